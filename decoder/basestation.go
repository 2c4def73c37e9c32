package decoder

func init() {
	register(4, "BaseStationReport", decodeBaseStationReport)
	register(11, "UTCAndDateResponse", decodeBaseStationReport)
}

// Type 11 shares the type 4 layout.
func decodeBaseStationReport(id uint8, f *fieldReader) (Message, error) {
	m := &BaseStationReport{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u8(2)
	m.MMSI = f.u32(30)
	m.Year = f.u16(14)
	m.Month = f.u8(4)
	m.Day = f.u8(5)
	m.Hour = f.u8(5)
	m.Minute = f.u8(6)
	m.Second = f.u8(6)
	m.Accuracy = f.flag()
	m.Lon, m.Lat = f.position(28, 27, latLonDiv)
	m.EPFD = f.u8(4)
	f.skip(10)
	m.RAIM = f.flag()
	m.Radio = f.u32(19)
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}
