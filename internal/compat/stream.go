package compat

import "iter"

// Stream is a single-consumer, pull-based sequence of translated chunks with
// an out-of-band cancellation handle. Errors travel in-band through the
// sequence; Cancel aborts the producer after its current in-flight unit of
// work and is safe to call more than once and concurrently with iteration.
type Stream[T any] struct {
	seq    iter.Seq2[*T, error]
	cancel func()
}

// NewStream pairs a chunk sequence with its cancellation handle. A nil cancel
// is allowed and makes Cancel a no-op.
func NewStream[T any](seq iter.Seq2[*T, error], cancel func()) *Stream[T] {
	return &Stream[T]{seq: seq, cancel: cancel}
}

// Seq returns the chunk sequence. The sequence is single-pass: range over it
// exactly once.
func (s *Stream[T]) Seq() iter.Seq2[*T, error] {
	return s.seq
}

// Cancel stops upstream event delivery. Already-emitted chunks stand; the
// sequence still terminates normally, surfacing any partially accumulated
// result. Cancellation is not an error.
func (s *Stream[T]) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}
