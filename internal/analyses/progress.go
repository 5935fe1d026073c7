package analyses

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how often the simulated progress advances.
const DefaultInterval = 3 * time.Second

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Simulator advances a fixed list of stage texts on a timer. It is cosmetic: the
// stages say nothing about real server progress.
type Simulator struct {
	Interval time.Duration
	Stages   []string
	// Sink receives the stage index and text. It is never called after stop returns.
	Sink func(stage int, text string)

	newTicker func(time.Duration) ticker
}

// Start shows the first stage and advances one stage per tick until the last one.
// The returned stop is idempotent and waits for the background task to exit.
func (s *Simulator) Start(ctx context.Context) (stop func()) {
	if len(s.Stages) == 0 || s.Sink == nil {
		return func() {}
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := s.newTicker
	if newTicker == nil {
		newTicker = newTimeTicker
	}

	s.Sink(0, s.Stages[0])
	if len(s.Stages) == 1 {
		return func() {}
	}

	t := newTicker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer t.Stop()
		current := 0
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C():
				// A stop racing with a tick wins.
				select {
				case <-done:
					return
				default:
				}
				current++
				s.Sink(current, s.Stages[current])
				if current == len(s.Stages)-1 {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}
}
