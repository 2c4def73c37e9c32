package decoder

// Message is implemented by every decoded record.
type Message interface {
	GetHeader() *Header
}

// Header holds the fields shared by all records. Type is the record name,
// MessageID the six-bit type code it was decoded from.
type Header struct {
	Type      string `json:"type"`
	MessageID uint8  `json:"message_id"`
	MMSI      uint32 `json:"mmsi"`
}

func (h *Header) GetHeader() *Header { return h }

// Positions are reported in 1/10000 minute for types 1-4, 11, 18 and 19,
// and in 1/10 minute for type 27. 181 (lon) and 91 (lat) mean unavailable.

// PositionReport is a class A position report (types 1, 2 and 3).
type PositionReport struct {
	Header
	Repeat   uint8      `json:"repeat"`
	Status   uint8      `json:"status"`
	Turn     RateOfTurn `json:"turn"`
	Speed    float64    `json:"speed"`
	Accuracy bool       `json:"accuracy"`
	Lon      float64    `json:"lon"`
	Lat      float64    `json:"lat"`
	Course   float64    `json:"course"`
	Heading  uint16     `json:"heading"`
	Second   uint8      `json:"second"`
	Maneuver uint8      `json:"maneuver"`
	RAIM     bool       `json:"raim"`
	Radio    uint32     `json:"radio"`
}

// BaseStationReport is a type 4 report or a type 11 UTC/date response.
type BaseStationReport struct {
	Header
	Repeat   uint8   `json:"repeat"`
	Year     uint16  `json:"year"`
	Month    uint8   `json:"month"`
	Day      uint8   `json:"day"`
	Hour     uint8   `json:"hour"`
	Minute   uint8   `json:"minute"`
	Second   uint8   `json:"second"`
	Accuracy bool    `json:"accuracy"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	EPFD     uint8   `json:"epfd"`
	RAIM     bool    `json:"raim"`
	Radio    uint32  `json:"radio"`
}

// StaticAndVoyageData is a type 5 report.
type StaticAndVoyageData struct {
	Header
	Repeat      uint8   `json:"repeat"`
	AISVersion  uint8   `json:"ais_version"`
	IMO         uint32  `json:"imo"`
	Callsign    string  `json:"callsign"`
	Shipname    string  `json:"shipname"`
	Shiptype    uint8   `json:"shiptype"`
	ToBow       uint16  `json:"to_bow"`
	ToStern     uint16  `json:"to_stern"`
	ToPort      uint8   `json:"to_port"`
	ToStarboard uint8   `json:"to_starboard"`
	EPFD        uint8   `json:"epfd"`
	ETAMonth    uint8   `json:"eta_month"`
	ETADay      uint8   `json:"eta_day"`
	ETAHour     uint8   `json:"eta_hour"`
	ETAMinute   uint8   `json:"eta_minute"`
	Draught     float64 `json:"draught"`
	Destination string  `json:"destination"`
	DTE         uint8   `json:"dte"`
}

// ClassBPositionReport is a type 18 report. Repeat is true when the
// message has been repeated at least once.
type ClassBPositionReport struct {
	Header
	Repeat   bool    `json:"repeat"`
	Speed    float64 `json:"speed"`
	Accuracy bool    `json:"accuracy"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Course   float64 `json:"course"`
	Heading  uint16  `json:"heading"`
	Second   uint8   `json:"second"`
	Regional uint8   `json:"regional"`
	CS       bool    `json:"cs"`
	Display  bool    `json:"display"`
	DSC      bool    `json:"dsc"`
	Band     bool    `json:"band"`
	Msg22    bool    `json:"msg22"`
	Assigned bool    `json:"assigned"`
	RAIM     bool    `json:"raim"`
	Radio    uint32  `json:"radio"`
}

// ExtendedClassBPositionReport is a type 19 report.
type ExtendedClassBPositionReport struct {
	Header
	Repeat      bool    `json:"repeat"`
	Speed       float64 `json:"speed"`
	Accuracy    bool    `json:"accuracy"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	Course      float64 `json:"course"`
	Heading     uint16  `json:"heading"`
	Second      uint8   `json:"second"`
	Regional    uint8   `json:"regional"`
	Shipname    string  `json:"shipname"`
	Shiptype    uint8   `json:"shiptype"`
	ToBow       uint16  `json:"to_bow"`
	ToStern     uint16  `json:"to_stern"`
	ToPort      uint8   `json:"to_port"`
	ToStarboard uint8   `json:"to_starboard"`
	EPFD        uint8   `json:"epfd"`
	RAIM        bool    `json:"raim"`
	DTE         uint8   `json:"dte"`
	Assigned    bool    `json:"assigned"`
}

// LongRangeBroadcast is a type 27 report. Speed and course are raw knots
// and degrees.
type LongRangeBroadcast struct {
	Header
	Repeat   uint8   `json:"repeat"`
	Accuracy bool    `json:"accuracy"`
	RAIM     bool    `json:"raim"`
	Status   uint8   `json:"status"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Speed    float64 `json:"speed"`
	Course   float64 `json:"course"`
	GNSS     bool    `json:"gnss"`
}
