package decoder

import (
	"encoding/json"
	"math"
)

type TurnStatus uint8

const (
	TurnRate TurnStatus = iota
	TurnNotAvailable
	TurnFastRight // more than 5 degrees per 30 s to starboard
	TurnFastLeft  // more than 5 degrees per 30 s to port
)

// RateOfTurn is the ROT indicator of a class A position report. Raw keeps
// the transmitted value.
type RateOfTurn struct {
	Raw    int8
	Status TurnStatus
}

func newRateOfTurn(raw int8) RateOfTurn {
	switch raw {
	case -128:
		return RateOfTurn{Raw: raw, Status: TurnNotAvailable}
	case 127:
		return RateOfTurn{Raw: raw, Status: TurnFastRight}
	case -127:
		return RateOfTurn{Raw: raw, Status: TurnFastLeft}
	}
	return RateOfTurn{Raw: raw, Status: TurnRate}
}

// DegreesPerMinute returns sign(raw)*(raw/4.733)^2. ok is false when the
// value is one of the sentinels.
func (t RateOfTurn) DegreesPerMinute() (deg float64, ok bool) {
	if t.Status != TurnRate {
		return 0, false
	}
	r := float64(t.Raw) / 4.733
	return math.Copysign(r*r, r), true
}

func (t RateOfTurn) String() string {
	switch t.Status {
	case TurnNotAvailable:
		return "nan"
	case TurnFastRight:
		return "fastright"
	case TurnFastLeft:
		return "fastleft"
	}
	b, _ := t.MarshalJSON()
	return string(b)
}

func (t RateOfTurn) MarshalJSON() ([]byte, error) {
	if deg, ok := t.DegreesPerMinute(); ok {
		return json.Marshal(deg)
	}
	return json.Marshal(t.String())
}
