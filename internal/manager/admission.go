package manager

import "context"

// begin reserves the handle's single in-flight slot. Returns a release func
// to be deferred.
func (h *Handle[C]) begin(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context or a retired handle
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case <-h.gone:
		return func() {}, errHandleReleased
	default:
	}

	select {
	case h.genCh <- struct{}{}:
		if h.Released() {
			<-h.genCh
			return func() {}, errHandleReleased
		}
		return func() { <-h.genCh }, nil
	case <-h.gone:
		return func() {}, errHandleReleased
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}

// Busy reports whether an invocation currently holds the handle.
func (h *Handle[C]) Busy() bool { return len(h.genCh) > 0 }
