package resource

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Future is the result of an asynchronous operation. It settles exactly once: the first
// Resolve or Reject wins and later calls are ignored.
type Future struct {
	once    sync.Once
	done    chan struct{}
	payload []byte
	err     error
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future already resolved with payload.
func Resolved(payload []byte) *Future {
	f := NewFuture()
	f.Resolve(payload)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected(err error) *Future {
	f := NewFuture()
	f.Reject(err)
	return f
}

// Resolve settles the future with payload. It reports whether this call settled it.
func (f *Future) Resolve(payload []byte) bool {
	return f.settle(payload, nil)
}

// Reject settles the future with err. It reports whether this call settled it.
func (f *Future) Reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(payload []byte, err error) bool {
	settled := false
	f.once.Do(func() {
		f.payload = payload
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done. Giving up on ctx does not
// withdraw the underlying call.
func (f *Future) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Decode awaits the payload and unmarshals it as JSON into v.
func (f *Future) Decode(ctx context.Context, v any) error {
	payload, err := f.Await(ctx)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}

// Then calls exactly one of onResolve or onReject once the future settles. Either
// callback may be nil.
func (f *Future) Then(onResolve func([]byte), onReject func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onReject != nil {
				onReject(f.err)
			}
			return
		}
		if onResolve != nil {
			onResolve(f.payload)
		}
	}()
}
