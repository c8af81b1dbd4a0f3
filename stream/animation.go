package stream

// A FrameSink receives every rendered frame.
type FrameSink interface {
	SendFrame(f *Frame) error
}

// SinkFunc adapts a function to a FrameSink.
type SinkFunc func(f *Frame) error

// SendFrame calls fn(f).
func (fn SinkFunc) SendFrame(f *Frame) error {
	return fn(f)
}
