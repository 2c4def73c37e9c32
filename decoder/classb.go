package decoder

func init() {
	register(18, "ClassBCSPositionReport", decodeClassBPositionReport)
	register(19, "ExtendedClassBCSPositionReport", decodeExtendedClassBPositionReport)
}

func decodeClassBPositionReport(id uint8, f *fieldReader) (Message, error) {
	m := &ClassBPositionReport{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u64(2) != 0
	m.MMSI = f.u32(30)
	f.skip(8)
	m.Speed = float64(f.u64(10)) / 10
	m.Accuracy = f.flag()
	m.Lon, m.Lat = f.position(28, 27, latLonDiv)
	m.Course = float64(f.u64(12)) / 10
	m.Heading = f.u16(9)
	m.Second = f.u8(6)
	m.Regional = f.u8(2)
	m.CS = f.flag()
	m.Display = f.flag()
	m.DSC = f.flag()
	m.Band = f.flag()
	m.Msg22 = f.flag()
	m.Assigned = f.flag()
	m.RAIM = f.flag()
	m.Radio = f.u32(20)
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}

func decodeExtendedClassBPositionReport(id uint8, f *fieldReader) (Message, error) {
	m := &ExtendedClassBPositionReport{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u64(2) != 0
	m.MMSI = f.u32(30)
	f.skip(8)
	m.Speed = float64(f.u64(10)) / 10
	m.Accuracy = f.flag()
	m.Lon, m.Lat = f.position(28, 27, latLonDiv)
	m.Course = float64(f.u64(12)) / 10
	m.Heading = f.u16(9)
	m.Second = f.u8(6)
	m.Regional = f.u8(4)
	m.Shipname = f.str(20)
	m.Shiptype = f.u8(8)
	m.ToBow = f.u16(9)
	m.ToStern = f.u16(9)
	m.ToPort = f.u8(6)
	m.ToStarboard = f.u8(6)
	m.EPFD = f.u8(4)
	m.RAIM = f.flag()
	m.DTE = f.u8(1)
	m.Assigned = f.flag()
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}
