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
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/types"
)

const testIface = "android.hardware.light@2.0::ILight"

// fakeImpl echoes the request code back after an OK status word
type fakeImpl struct {
	mu    sync.Mutex
	codes []uint32
}

func (f *fakeImpl) Name() string { return "fake" }

func (f *fakeImpl) Reply(req *binder.RemoteRequest) (*binder.Writer, int32) {
	f.mu.Lock()
	f.codes = append(f.codes, req.Code)
	f.mu.Unlock()

	w := binder.NewWriter()
	w.WriteInt32(binder.StatusOK)
	w.WriteUint32(req.Code)
	return w, binder.StatusOK
}

func (f *fakeImpl) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

func testBusDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "hal")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func startRegistry(t *testing.T, busDir, device string) *binder.Registry {
	t.Helper()
	r, err := binder.NewRegistry(busDir, device)
	require.NoError(t, err)
	go r.Serve()
	t.Cleanup(func() { r.Stop() })
	return r
}

type runningService struct {
	svc    *HalService
	cancel context.CancelFunc
	exit   chan int
}

func startService(t *testing.T, busDir string, id types.ServiceIdentity, impl Implementation) *runningService {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &runningService{
		svc:    NewHalService(id, impl, binder.WithBusDir(busDir)),
		cancel: cancel,
		exit:   make(chan int, 1),
	}
	go func() {
		rs.exit <- rs.svc.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		rs.svc.Close()
	})
	return rs
}

func (rs *runningService) stop(t *testing.T) int {
	t.Helper()
	rs.cancel()
	select {
	case code := <-rs.exit:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
		return -1
	}
}

func (rs *runningService) waitState(t *testing.T, state State) {
	t.Helper()
	require.Eventually(t, func() bool { return rs.svc.State() == state },
		5*time.Second, 10*time.Millisecond, "want state %s, have %s", state, rs.svc.State())
}

func testIdentity() types.ServiceIdentity {
	return types.ServiceIdentity{Device: "/dev/hwbinder", Interface: testIface, Slot: "libdroid"}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "waiting-for-registry", StateWaitingForRegistry.String())
	assert.Equal(t, "registered", StateRegistered.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestServiceRegistersAndServes(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	startRegistry(t, busDir, id.Device)

	impl := &fakeImpl{}
	rs := startService(t, busDir, id, impl)
	rs.waitState(t, StateRegistered)

	conn, err := binder.Dial(context.Background(), id, binder.WithBusDir(busDir))
	require.NoError(t, err)
	defer conn.Close()

	reply, status := conn.Client.Transact(types.VectorGetSupportedTypes, binder.NewWriter())
	require.Equal(t, binder.StatusOK, status)
	first, err := reply.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(0), first)
	code, err := reply.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, types.VectorGetSupportedTypes, code)

	assert.Equal(t, 0, rs.stop(t))
	assert.Equal(t, StateTerminated, rs.svc.State())
}

func TestServiceRejectsForeignInterface(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	startRegistry(t, busDir, id.Device)

	impl := &fakeImpl{}
	rs := startService(t, busDir, id, impl)
	rs.waitState(t, StateRegistered)

	conn, err := binder.Dial(context.Background(), id, binder.WithBusDir(busDir))
	require.NoError(t, err)
	defer conn.Close()

	_, status, err := conn.Remote.Transact(context.Background(), "some.other.IFace", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, binder.StatusBadInterface, status)
	assert.Zero(t, impl.calls())
}

func TestServiceNoDevice(t *testing.T) {
	busDir := testBusDir(t)

	rs := startService(t, busDir, testIdentity(), &fakeImpl{})

	select {
	case code := <-rs.exit:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not fail without a device")
	}
	assert.Equal(t, StateTerminated, rs.svc.State())
}

func TestServiceNeverRegisteredExitsOne(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	require.NoError(t, os.MkdirAll(binder.DeviceDir(busDir, id.Device), 0755))

	rs := startService(t, busDir, id, &fakeImpl{})
	rs.waitState(t, StateWaitingForRegistry)

	assert.Equal(t, 1, rs.stop(t))
}

func TestServiceTerminatedWhileWaiting(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	require.NoError(t, os.MkdirAll(binder.DeviceDir(busDir, id.Device), 0755))

	rs := startService(t, busDir, id, &fakeImpl{})
	rs.waitState(t, StateWaitingForRegistry)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case code := <-rs.exit:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("SIGTERM did not end the registry wait")
	}
	assert.Equal(t, StateTerminated, rs.svc.State())
}

func TestServiceReRegistersAfterRegistryRestart(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	registry := startRegistry(t, busDir, id.Device)

	rs := startService(t, busDir, id, &fakeImpl{})
	rs.waitState(t, StateRegistered)

	// Give the presence monitor time to attach
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, registry.Stop())
	rs.waitState(t, StateWaitingForRegistry)

	startRegistry(t, busDir, id.Device)
	rs.waitState(t, StateRegistered)

	sm := binder.NewServiceManager(id.Device, binder.WithBusDir(busDir))
	defer sm.Close()
	_, err := sm.GetService(context.Background(), id.FQName())
	assert.NoError(t, err)

	assert.Equal(t, 0, rs.stop(t))
}

func TestServiceExitCodeIsSticky(t *testing.T) {
	busDir := testBusDir(t)
	id := testIdentity()
	registry := startRegistry(t, busDir, id.Device)

	rs := startService(t, busDir, id, &fakeImpl{})
	rs.waitState(t, StateRegistered)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, registry.Stop())
	rs.waitState(t, StateWaitingForRegistry)

	assert.Equal(t, 0, rs.stop(t))
}
