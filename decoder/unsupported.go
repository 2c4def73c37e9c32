package decoder

func init() {
	register(9, "SARAircraftPositionReport", func(id uint8, _ *fieldReader) (Message, error) {
		return nil, &NotImplementedError{Type: id, Name: "Static Data Report"}
	})
	register(23, "GroupAssignmentCommand", func(id uint8, _ *fieldReader) (Message, error) {
		return nil, &UnsupportedMessageTypeError{Type: id}
	})
	register(24, "StaticDataReport", func(id uint8, _ *fieldReader) (Message, error) {
		return nil, &NotImplementedError{Type: id, Name: "Static Data Report"}
	})
}
