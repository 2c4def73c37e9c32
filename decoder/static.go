package decoder

func init() {
	register(5, "StaticAndVoyageRelatedData", decodeStaticAndVoyageData)
}

func decodeStaticAndVoyageData(id uint8, f *fieldReader) (Message, error) {
	m := &StaticAndVoyageData{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u8(2)
	m.MMSI = f.u32(30)
	m.AISVersion = f.u8(2)
	m.IMO = f.u32(30)
	m.Callsign = f.str(7)
	m.Shipname = f.str(20)
	m.Shiptype = f.u8(8)
	m.ToBow = f.u16(9)
	m.ToStern = f.u16(9)
	m.ToPort = f.u8(6)
	m.ToStarboard = f.u8(6)
	m.EPFD = f.u8(4)
	m.ETAMonth = f.u8(4)
	m.ETADay = f.u8(5)
	m.ETAHour = f.u8(5)
	m.ETAMinute = f.u8(6)
	m.Draught = float64(f.u64(8)) / 10
	m.Destination = f.str(20)
	m.DTE = f.u8(1)
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}
