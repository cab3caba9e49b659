// Package result carries a stage value together with the reason it had to fall back.
package result

// Outcome is a stage value. A non-nil Err means Value is a fallback, not a failure of the turn.
type Outcome[T any] struct {
	Value T
	Err   error
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

func Fallback[T any](value T, err error) Outcome[T] {
	return Outcome[T]{Value: value, Err: err}
}

func (o Outcome[T]) Degraded() bool {
	return o.Err != nil
}
