package clock

import (
	"sync"
	"time"
)

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler runs callbacks later. Implementations decide which goroutine the
// callbacks run on; controllers assume they are serialized with every other
// call into the controller.
type Scheduler interface {
	Every(d time.Duration, fn func()) Cancel
	After(d time.Duration, fn func()) Cancel
}

// Ticker is a Scheduler backed by real timers. Each firing is handed to Post,
// which should hop onto the owner's event goroutine. A nil Post calls fn on
// the timer goroutine.
type Ticker struct {
	Post func(fn func())
}

func NewTicker(post func(fn func())) *Ticker {
	return &Ticker{Post: post}
}

func (t *Ticker) Every(d time.Duration, fn func()) Cancel {
	tk := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-tk.C:
				t.dispatch(fn)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			tk.Stop()
			close(done)
		})
	}
}

func (t *Ticker) After(d time.Duration, fn func()) Cancel {
	tm := time.AfterFunc(d, func() { t.dispatch(fn) })
	return func() { tm.Stop() }
}

func (t *Ticker) dispatch(fn func()) {
	if t.Post != nil {
		t.Post(fn)
		return
	}
	fn()
}
