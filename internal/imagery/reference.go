package imagery

import (
	"errors"

	"github.com/Faultbox/blockterrain/internal/async"
)

// ErrNotReady is returned by Canvas while the image is still decoding.
var ErrNotReady = errors.New("imagery: reference image not ready")

// Reference is the one shared world image. Every tile load awaits the same
// Ready future.
type Reference struct {
	ready *async.Future[*Canvas]
}

// LoadReference decodes path on the loop's worker pool and draws it onto a
// w*h canvas.
func LoadReference(loop *async.Loop, path string, w, h int) *Reference {
	return &Reference{ready: async.Go(loop, func() (*Canvas, error) {
		img, err := DecodeFile(path)
		if err != nil {
			return nil, err
		}
		return NewCanvas(img, w, h), nil
	})}
}

// NewReference wraps an already drawn canvas.
func NewReference(c *Canvas) *Reference {
	return &Reference{ready: async.Resolved(c)}
}

// PendingReference returns a reference settled later through the returned
// future. Settle it on the loop goroutine.
func PendingReference() (*Reference, *async.Future[*Canvas]) {
	f := async.NewFuture[*Canvas]()
	return &Reference{ready: f}, f
}

// Ready settles once the image is decoded, or with the decode error.
func (r *Reference) Ready() *async.Future[*Canvas] {
	return r.ready
}

// Canvas returns the decoded canvas, ErrNotReady while pending, or the
// decode error.
func (r *Reference) Canvas() (*Canvas, error) {
	if !r.ready.Done() {
		return nil, ErrNotReady
	}
	return r.ready.Result()
}
