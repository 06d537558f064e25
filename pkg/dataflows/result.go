package dataflows

// Status classifies the outcome of a provider lookup.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusProviderError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusProviderError:
		return "provider_error"
	default:
		return "unknown"
	}
}

// Result is the explicit outcome of a market-data or news call. Provider
// errors are carried in Err and never returned on their own.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func Found[T any](v T) Result[T] {
	return Result[T]{Status: StatusFound, Value: v}
}

func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusProviderError, Err: err}
}

// OK reports whether a value is present.
func (r Result[T]) OK() bool {
	return r.Status == StatusFound
}
