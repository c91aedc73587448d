// Package results holds the discriminated success/failure value service
// operations return alongside infrastructure errors.
package results

// OperationResult carries exactly one of Success or Failure.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }

// MapSuccess converts the success value, passing failures through untouched.
func MapSuccess[S any, T any, F any](r OperationResult[S, F], fn func(S) T) OperationResult[T, F] {
	if r.Success == nil {
		return OperationResult[T, F]{Failure: r.Failure}
	}
	t := fn(*r.Success)
	return OperationResult[T, F]{Success: &t}
}
