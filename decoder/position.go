package decoder

func init() {
	for id := uint8(1); id <= 3; id++ {
		register(id, "PositionReportClassA", decodePositionReport)
	}
}

func decodePositionReport(id uint8, f *fieldReader) (Message, error) {
	m := &PositionReport{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u8(2)
	m.MMSI = f.u32(30)
	m.Status = f.u8(4)
	m.Turn = newRateOfTurn(int8(f.i64(8)))
	m.Speed = float64(f.u64(10)) / 10
	m.Accuracy = f.flag()
	m.Lon, m.Lat = f.position(28, 27, latLonDiv)
	m.Course = float64(f.u64(12)) / 10
	m.Heading = f.u16(9)
	m.Second = f.u8(6)
	m.Maneuver = f.u8(2)
	f.skip(3)
	m.RAIM = f.flag()
	m.Radio = f.u32(19)
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}
