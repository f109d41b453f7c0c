package async

// Future is a write-once result. It is not safe for concurrent use: create,
// settle and observe it only on the loop goroutine (Go does this for you).
type Future[T any] struct {
	done      bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved returns a future already holding v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already holding err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)
	return f
}

// Resolve settles the future with v. Later calls are ignored.
func (f *Future[T]) Resolve(v T) { f.settle(v, nil) }

// Reject settles the future with err. Later calls are ignored.
func (f *Future[T]) Reject(err error) {
	var zero T
	f.settle(zero, err)
}

// Done reports whether the future has settled.
func (f *Future[T]) Done() bool { return f.done }

// Result returns the settled value and error. Both are zero while pending.
func (f *Future[T]) Result() (T, error) { return f.value, f.err }

// OnComplete registers fn to run once the future settles. If it already has,
// fn runs immediately.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	if f.done {
		fn(f.value, f.err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
}

func (f *Future[T]) settle(v T, err error) {
	if f.done {
		return
	}
	f.done = true
	f.value = v
	f.err = err

	callbacks := f.callbacks
	f.callbacks = nil
	for _, fn := range callbacks {
		fn(v, err)
	}
}

// Then maps a resolved value through fn. Rejections pass through unchanged.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := NewFuture[U]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		u, err := fn(v)
		out.settle(u, err)
	})
	return out
}

// WrapErr rewrites a rejection with wrap. Resolved values pass through.
func WrapErr[T any](f *Future[T], wrap func(error) error) *Future[T] {
	out := NewFuture[T]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			err = wrap(err)
		}
		out.settle(v, err)
	})
	return out
}

// Pair holds the results of two joined futures.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Both settles once a and b have both resolved, or with the first rejection
// observed from either.
func Both[A, B any](a *Future[A], b *Future[B]) *Future[Pair[A, B]] {
	out := NewFuture[Pair[A, B]]()
	a.OnComplete(func(av A, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		b.OnComplete(func(bv B, err error) {
			if err != nil {
				out.Reject(err)
				return
			}
			out.Resolve(Pair[A, B]{First: av, Second: bv})
		})
	})
	b.OnComplete(func(_ B, err error) {
		if err != nil {
			out.Reject(err)
		}
	})
	return out
}
