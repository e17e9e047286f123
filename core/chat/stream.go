package chat

import (
	"iter"
	"strings"
)

// Fragment is one piece of incremental text from a streaming response. The
// final fragment has Done set and usually empty Text.
type Fragment struct {
	Text string
	Done bool
}

// Stream wraps a streaming iterator over text fragments. It supports
// range-based iteration for real-time rendering and a convenience Collect
// for callers who want the whole completion but still benefit from streaming
// transport.
//
// A Stream is finite and non-restartable. Callers must consume it, either by
// ranging over Iter (breaking early is fine) or by calling Collect: the
// producing side holds an open HTTP response body that is released only when
// the iterator completes or the consumer breaks out.
type Stream struct {
	iterator iter.Seq2[Fragment, error]
}

// NewStream creates a Stream from a raw iterator. The iterator yields
// fragments with nil error for normal deltas and may yield a non-nil error
// to signal a mid-stream failure, after which it must stop.
func NewStream(iterator iter.Seq2[Fragment, error]) *Stream {
	return &Stream{iterator: iterator}
}

// Iter returns the underlying iterator for range-over-func loops.
//
//	for fragment, err := range stream.Iter() {
//	    if err != nil { ... }
//	    fmt.Print(fragment.Text)
//	}
func (s *Stream) Iter() iter.Seq2[Fragment, error] {
	return s.iterator
}

// Collect consumes the entire stream and returns the concatenated text. A
// mid-stream error terminates collection; the text accumulated so far is
// returned together with the error.
func (s *Stream) Collect() (string, error) {
	var builder strings.Builder
	for fragment, err := range s.iterator {
		if err != nil {
			return builder.String(), err
		}
		builder.WriteString(fragment.Text)
		if fragment.Done {
			break
		}
	}
	return builder.String(), nil
}
