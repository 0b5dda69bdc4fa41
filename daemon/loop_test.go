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

package daemon

import (
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { order = append(order, i) }))
	}
	l.Post(l.Quit)

	l.Run()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoopInvoke(t *testing.T) {
	l := NewLoop()
	go l.Run()
	defer l.Quit()

	var value int32
	require.True(t, l.Invoke(func() { atomic.StoreInt32(&value, 7) }))
	assert.Equal(t, int32(7), atomic.LoadInt32(&value))
}

func TestLoopPostAfterQuit(t *testing.T) {
	l := NewLoop()
	l.Quit()
	l.Quit()

	assert.False(t, l.Post(func() {}))
	assert.False(t, l.Invoke(func() { t.Error("must not run") }))

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestLoopQuitDropsPending(t *testing.T) {
	l := NewLoop()
	ran := false

	l.Post(l.Quit)
	l.Post(func() { ran = true })
	l.Run()

	assert.False(t, ran)
}

func TestLoopSignalWatch(t *testing.T) {
	l := NewLoop()
	got := make(chan os.Signal, 1)

	id := l.AddSignalWatch(func(sig os.Signal) {
		got <- sig
		l.Quit()
	}, syscall.SIGUSR1)

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))

	select {
	case sig := <-got:
		assert.Equal(t, syscall.SIGUSR1, sig)
	case <-time.After(2 * time.Second):
		t.Fatal("signal not delivered to loop")
	}
	<-done
	l.RemoveSignalWatch(id)
	l.RemoveSignalWatch(id)
}
