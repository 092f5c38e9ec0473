package gpio

import "errors"

// FakeReader is a test double that returns scripted switch samples.
type FakeReader struct {
	// Samples contains scripted switch states to return.
	// Each call to Read() consumes the next sample.
	Samples []Switches

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Switches) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Switches, error) {
	if f.ReadError != nil {
		return Switches{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Switches{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// Held builds a debounce script: the same sample repeated n times.
func Held(sw Switches, n int) []Switches {
	out := make([]Switches, n)
	for i := range out {
		out[i] = sw
	}
	return out
}

// FakeWriter records every frame written to it.
type FakeWriter struct {
	// Frames contains all frames written, in order.
	Frames []Frame

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by WriteFrame()
	WriteError error
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// WriteFrame records the frame.
func (f *FakeWriter) WriteFrame(frame Frame) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Frames = append(f.Frames, frame)
	return nil
}

// Last returns the most recently written frame, or a zero Frame.
func (f *FakeWriter) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}
