package clock

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by Advance. Callbacks run synchronously on the
// goroutine calling Advance, in due-time order.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	id        int
	at        time.Duration
	every     time.Duration
	fn        func()
	cancelled bool
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) Every(d time.Duration, fn func()) Cancel {
	return m.add(d, d, fn)
}

func (m *Manual) After(d time.Duration, fn func()) Cancel {
	return m.add(d, 0, fn)
}

func (m *Manual) add(delay, every time.Duration, fn func()) Cancel {
	m.seq++
	t := &manualTimer{id: m.seq, at: m.now + delay, every: every, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Now reports the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration { return m.now }

// Pending counts timers that have not fired (one-shot) or been cancelled.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, firing everything that comes due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			t.cancelled = true
		}
		t.fn()
	}
	m.now = target
	m.compact()
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	live := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if !t.cancelled && t.at <= limit {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at == live[j].at {
			return live[i].id < live[j].id
		}
		return live[i].at < live[j].at
	})
	return live[0]
}

func (m *Manual) compact() {
	out := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			out = append(out, t)
		}
	}
	m.timers = out
}
