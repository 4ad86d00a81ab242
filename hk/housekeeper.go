// Package hk provides a mechanism for registering functions invoked at
// specified intervals: one timer goroutine shared by every registration
// (such as the ledger's burn-drain loop), instead of each caller running
// its own ticker. File sinks keep their rollover tick inside their own run
// loop and do not use it.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/iotmesh/datasink/cmn/debug"
	"github.com/iotmesh/datasink/cmn/mono"
	"github.com/iotmesh/datasink/cmn/nlog"
)

// DayInterval is a convenience constant for registrations that only care
// about "occasionally", mirroring the teacher's housekeeper.
const DayInterval = 24 * time.Hour

// HousekeepCB runs at the registered interval and returns the interval to
// wait before running again (allowing a callback to back off or speed up);
// returning <= 0 keeps the previously registered interval.
type HousekeepCB func() time.Duration

type request struct {
	f        HousekeepCB
	name     string
	interval time.Duration
}

type timeout struct {
	f        HousekeepCB
	name     string
	when     int64 // mono.NanoTime
	interval time.Duration
}

type timeoutHeap []*timeout

func (h timeoutHeap) Len() int            { return len(h) }
func (h timeoutHeap) Less(i, j int) bool  { return h[i].when < h[j].when }
func (h timeoutHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timeoutHeap) Push(x any)         { *h = append(*h, x.(*timeout)) }
func (h *timeoutHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Houskeeper is a single timer goroutine multiplexing any number of
// registered callbacks, ordered by next-due-time via a min-heap.
type Houskeeper struct {
	reqCh   chan request
	unregCh chan string
	stopCh  chan struct{}
	started chan struct{}
	once    sync.Once
}

// DefaultHK is the process-wide housekeeper; callers Reg against it and the
// caller that owns the process lifecycle calls Run/Stop.
var DefaultHK = New()

func New() *Houskeeper {
	return &Houskeeper{
		reqCh:   make(chan request, 16),
		unregCh: make(chan string, 16),
		stopCh:  make(chan struct{}),
		started: make(chan struct{}),
	}
}

// Reg registers f to run every interval, starting after interval elapses.
func Reg(name string, f HousekeepCB, interval time.Duration) { DefaultHK.Reg(name, f, interval) }

// Unreg cancels a previously registered callback.
func Unreg(name string) { DefaultHK.Unreg(name) }

func (hk *Houskeeper) Reg(name string, f HousekeepCB, interval time.Duration) {
	debug.Assert(interval > 0, "hk: non-positive interval")
	hk.reqCh <- request{f: f, name: name, interval: interval}
}

func (hk *Houskeeper) Unreg(name string) { hk.unregCh <- name }

// Run drives the housekeeper until Stop is called. Safe to call exactly
// once; call it from a dedicated goroutine.
func (hk *Houskeeper) Run() {
	var (
		h       timeoutHeap
		byName  = map[string]*timeout{}
	)
	heap.Init(&h)
	close(hk.started)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		var wait time.Duration = time.Hour
		now := mono.NanoTime()
		for len(h) > 0 && h[0].when <= now {
			t := heap.Pop(&h).(*timeout)
			if byName[t.name] != t {
				continue // unregistered since it was scheduled
			}
			next := t.f()
			if next <= 0 {
				next = t.interval
			} else {
				t.interval = next
			}
			t.when = mono.NanoTime() + int64(next)
			heap.Push(&h, t)
		}
		if len(h) > 0 {
			d := time.Duration(h[0].when - mono.NanoTime())
			if d < 0 {
				d = 0
			}
			wait = d
		}
		timer.Reset(wait)
		select {
		case <-hk.stopCh:
			return
		case req := <-hk.reqCh:
			t := &timeout{name: req.name, f: req.f, interval: req.interval, when: mono.NanoTime() + int64(req.interval)}
			byName[req.name] = t
			heap.Push(&h, t)
		case name := <-hk.unregCh:
			delete(byName, name)
		case <-timer.C:
		}
	}
}

// Stop terminates Run; safe to call multiple times.
func (hk *Houskeeper) Stop() {
	hk.once.Do(func() { close(hk.stopCh) })
}

// WaitStarted blocks until Run has begun accepting registrations; used by
// tests that Reg immediately after spawning the housekeeper goroutine.
func (hk *Houskeeper) WaitStarted() { <-hk.started }

func WaitStarted() { DefaultHK.WaitStarted() }

// TestInit resets DefaultHK; intended for test setup only.
func TestInit() {
	DefaultHK = New()
	nlog.Infof("hk: reinitialized for test")
}
