package export

import "fmt"

// RenderError reports a failure while building the document.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// StreamError reports that a finished document could not be delivered.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
