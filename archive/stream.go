package archive

import (
	"context"
	"errors"
	"io"
)

// Stream is a single-pass byte stream filled by a producer goroutine.
// The consumer must call Close, which also waits for the producer to exit.
type Stream struct {
	pr   *io.PipeReader
	done chan struct{}
	err  error
}

func newStream(produce func(w io.Writer) error) *Stream {
	pr, pw := io.Pipe()
	s := &Stream{pr: pr, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		err := produce(pw)
		// The consumer hung up; whatever made it stop is its own error to report.
		if errors.Is(err, io.ErrClosedPipe) {
			err = nil
		}
		s.err = err
		_ = pw.CloseWithError(err)
	}()

	return s
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close releases the stream and blocks until the producer has returned.
func (s *Stream) Close() error {
	_ = s.pr.Close()
	<-s.done
	return nil
}

// Err returns the producer's failure, if any. It blocks until the producer
// has returned, so call it after Close or after reading to EOF.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// errReader remembers the first read error so callers of io.Copy can tell a
// failing source from a failing destination.
type errReader struct {
	r   io.Reader
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
