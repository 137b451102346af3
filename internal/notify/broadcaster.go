package notify

import (
	"context"
	"sync"
)

// Broadcaster is the in-process notifier.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

type subscription struct {
	mu      sync.Mutex
	pending int
	wake    chan struct{}
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*subscription)}
}

func (b *Broadcaster) Publish(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, s := range b.subs {
		s.signal()
	}
	return nil
}

func (b *Broadcaster) Subscribe(handler func()) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	s := &subscription{wake: make(chan struct{}, 1), done: make(chan struct{}), exited: make(chan struct{})}
	b.subs[id] = s
	go s.run(handler)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		s.stop()
	}, nil
}

// Close stops every subscription and waits for running handlers.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscription, 0, len(b.subs))
	for id, s := range b.subs {
		delete(b.subs, id)
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
	return nil
}

func (s *subscription) signal() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// stop ends the subscription and returns once its handler is no longer
// running. It must not be called from the handler itself.
func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
	<-s.exited
}

// run calls handler once per pending signal, one call at a time.
func (s *subscription) run(handler func()) {
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if s.pending == 0 {
				s.mu.Unlock()
				break
			}
			s.pending--
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			default:
			}
			handler()
		}
	}
}
