package decoder

func init() {
	register(27, "LongRangeBroadcastMessage", decodeLongRangeBroadcast)
}

func decodeLongRangeBroadcast(id uint8, f *fieldReader) (Message, error) {
	m := &LongRangeBroadcast{Header: Header{Type: MessageName(id), MessageID: id}}
	m.Repeat = f.u8(2)
	m.MMSI = f.u32(30)
	m.Accuracy = f.flag()
	m.RAIM = f.flag()
	m.Status = f.u8(4)
	m.Lon, m.Lat = f.position(18, 17, longRangeLLDiv)
	m.Speed = float64(f.u64(6))
	m.Course = float64(f.u64(9))
	m.GNSS = f.flag()
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}
