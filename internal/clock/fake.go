package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline order.
// Ticker sends are non-blocking with a one-slot buffer, like time.Ticker.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

// NewFake returns a Fake starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tk := &fakeTicker{
		f:      f,
		ch:     make(chan time.Time, 1),
		period: d,
		next:   f.now.Add(d),
	}
	f.tickers = append(f.tickers, tk)
	return tk
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	tm := &fakeTimer{f: f, when: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, tm)
	return tm
}

// Advance moves the clock forward by d, firing everything due on the way.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		tm, tk, at := f.nextLocked(target)
		if tm == nil && tk == nil {
			break
		}
		f.now = at

		if tm != nil {
			f.removeTimerLocked(tm)
			tm.fired = true
			f.mu.Unlock()
			tm.fn()
			f.mu.Lock()
			continue
		}

		tk.next = tk.next.Add(tk.period)
		select {
		case tk.ch <- at:
		default:
		}
	}

	f.now = target
	f.mu.Unlock()
}

// PendingTimers returns the number of scheduled callbacks that have neither
// fired nor been stopped.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (f *Fake) ActiveTickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// nextLocked returns the earliest due timer or ticker at or before target.
// Timers win ties.
func (f *Fake) nextLocked(target time.Time) (*fakeTimer, *fakeTicker, time.Time) {
	var (
		bestTimer  *fakeTimer
		bestTicker *fakeTicker
		best       time.Time
	)
	for _, tm := range f.timers {
		if tm.when.After(target) {
			continue
		}
		if bestTimer == nil || tm.when.Before(best) {
			bestTimer, best = tm, tm.when
		}
	}
	for _, tk := range f.tickers {
		if tk.next.After(target) {
			continue
		}
		if (bestTimer == nil && bestTicker == nil) || tk.next.Before(best) {
			bestTimer, bestTicker, best = nil, tk, tk.next
		}
	}
	return bestTimer, bestTicker, best
}

func (f *Fake) removeTimerLocked(tm *fakeTimer) bool {
	for i, t := range f.timers {
		if t == tm {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Fake) removeTickerLocked(tk *fakeTicker) {
	for i, t := range f.tickers {
		if t == tk {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
}

type fakeTimer struct {
	f     *Fake
	when  time.Time
	fn    func()
	fired bool
}

func (t *fakeTimer) Stop() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.fired {
		return false
	}
	return t.f.removeTimerLocked(t)
}

type fakeTicker struct {
	f      *Fake
	ch     chan time.Time
	period time.Duration
	next   time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.removeTickerLocked(t)
}
