package capability

import (
	"context"
	"errors"
	"sync"
)

// ErrStreamClosed is returned by Next after Close.
var ErrStreamClosed = errors.New("stream closed")

// sliceStream yields a fixed list of fragments.
type sliceStream struct {
	mu     sync.Mutex
	frags  []string
	closed bool
}

// NewSliceStream returns a Stream over frags.
func NewSliceStream(frags []string) Stream {
	return &sliceStream{frags: append([]string(nil), frags...)}
}

func (s *sliceStream) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrStreamClosed
	}
	if len(s.frags) == 0 {
		return "", false, nil
	}
	f := s.frags[0]
	s.frags = s.frags[1:]
	return f, true, nil
}

func (s *sliceStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Producer pushes fragments through emit until done. emit blocks until the
// consumer pulls the fragment and returns an error once the stream is closed.
type Producer func(ctx context.Context, emit func(string) error) error

type item struct {
	frag string
	err  error
	done bool
}

// pushStream adapts a push-style producer (token callbacks, SSE readers) to
// the pull-based Stream contract. The producer runs in its own goroutine and
// never gets ahead of the consumer by more than one fragment.
// Next must not be called concurrently.
type pushStream struct {
	items  chan item
	closed chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	done   bool
}

// NewPushStream starts produce and returns the pulling side.
func NewPushStream(ctx context.Context, produce Producer) Stream {
	pctx, cancel := context.WithCancel(ctx)
	s := &pushStream{items: make(chan item), closed: make(chan struct{}), cancel: cancel}
	go func() {
		emit := func(f string) error {
			select {
			case s.items <- item{frag: f}:
				return nil
			case <-pctx.Done():
				return pctx.Err()
			}
		}
		err := produce(pctx, emit)
		select {
		case s.items <- item{err: err, done: true}:
		case <-pctx.Done():
		}
	}()
	return s
}

func (s *pushStream) Next(ctx context.Context) (string, bool, error) {
	if s.done {
		return "", false, nil
	}
	select {
	case <-s.closed:
		return "", false, ErrStreamClosed
	default:
	}
	select {
	case it := <-s.items:
		if it.done {
			s.done = true
			_ = s.Close()
			if it.err != nil {
				return "", false, it.err
			}
			return "", false, nil
		}
		return it.frag, true, nil
	case <-s.closed:
		return "", false, ErrStreamClosed
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (s *pushStream) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.cancel()
	})
	return nil
}
