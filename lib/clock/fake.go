// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose time only moves when the test calls Advance.
// Safe for concurrent use: code under test waits on After/Sleep/ticker
// channels while the test drives time from its own goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
	tickers []*fakeTicker
}

type fakeWaiter struct {
	at time.Time
	ch chan time.Time
}

type fakeTicker struct {
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

// NewFake returns a Fake clock starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives once Advance moves time past
// the deadline. If d <= 0, the channel receives immediately.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, &fakeWaiter{at: f.now.Add(d), ch: ch})
	return ch
}

// Sleep blocks until Advance moves time past the deadline.
func (f *Fake) Sleep(d time.Duration) {
	<-f.After(d)
}

// NewTicker returns a Ticker that fires each time Advance crosses a
// multiple of d.
func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ticker := &fakeTicker{
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, ticker)

	return &Ticker{
		C: ticker.ch,
		stopFunc: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the fake time forward by d, firing every waiter whose
// deadline is reached and every ticker interval crossed. Ticks follow
// time.Ticker semantics: a slow consumer sees dropped ticks, not a
// backlog.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)

	remaining := f.waiters[:0]
	for _, waiter := range f.waiters {
		if !waiter.at.After(f.now) {
			waiter.ch <- f.now
		} else {
			remaining = append(remaining, waiter)
		}
	}
	f.waiters = remaining

	for _, ticker := range f.tickers {
		if ticker.stopped {
			continue
		}
		for !ticker.next.After(f.now) {
			select {
			case ticker.ch <- ticker.next:
			default:
			}
			ticker.next = ticker.next.Add(ticker.interval)
		}
	}
}
