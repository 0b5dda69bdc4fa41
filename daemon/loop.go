// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package daemon hosts a light service on the bus: a single-threaded run
// loop plus the registration state machine around it.
package daemon

import (
	"os"
	"os/signal"
	"sync"
)

// Loop runs posted functions one at a time, in order, on the goroutine
// that called Run.
type Loop struct {
	events   chan func()
	quit     chan struct{}
	quitOnce sync.Once

	mu      sync.Mutex
	nextID  uint64
	watches map[uint64]chan os.Signal
}

func NewLoop() *Loop {
	return &Loop{
		events:  make(chan func(), 32),
		quit:    make(chan struct{}),
		watches: make(map[uint64]chan os.Signal),
	}
}

// Post queues fn. It returns false once the loop has quit.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}

	select {
	case l.events <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Invoke queues fn and waits for it to run. It returns false when the
// loop quit before fn ran. Must not be called from the loop itself.
func (l *Loop) Invoke(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return false
	}

	select {
	case <-ran:
		return true
	case <-l.quit:
		// fn may have completed in the same instant
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Run executes posted functions until Quit. Functions still queued at
// that point are dropped.
func (l *Loop) Run() {
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.events:
			select {
			case <-l.quit:
				return
			default:
			}
			fn()
		}
	}
}

// Quit stops the loop. Safe to call more than once and from any goroutine.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() {
		close(l.quit)
	})
}

// Done is closed once Quit has been called
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

// AddSignalWatch runs fn on the loop whenever one of sigs arrives
func (l *Loop) AddSignalWatch(fn func(os.Signal), sigs ...os.Signal) uint64 {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.watches[id] = ch
	l.mu.Unlock()

	go func() {
		for sig := range ch {
			sig := sig
			if !l.Post(func() { fn(sig) }) {
				return
			}
		}
	}()
	return id
}

// RemoveSignalWatch stops delivery to a watch and restores default handling
func (l *Loop) RemoveSignalWatch(id uint64) {
	l.mu.Lock()
	ch, ok := l.watches[id]
	delete(l.watches, id)
	l.mu.Unlock()

	if ok {
		signal.Stop(ch)
		close(ch)
	}
}
