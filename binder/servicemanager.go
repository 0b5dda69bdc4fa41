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

package binder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/we-are-mono/droidleds/daemon/logger"
)

// pollInterval is the fallback re-check period while waiting for the registry
const pollInterval = 250 * time.Millisecond

// PresenceHandler is called with the new registry presence on every transition
type PresenceHandler func(present bool)

// Option configures a ServiceManager
type Option func(*ServiceManager)

// WithBusDir overrides the bus root directory
func WithBusDir(dir string) Option {
	return func(sm *ServiceManager) {
		sm.busDir = dir
	}
}

// ServiceManager is the client side of a device's registry
type ServiceManager struct {
	device string
	busDir string
	dir    string
	socket string
	log    logger.Logger

	mu        sync.Mutex
	present   bool
	handlers  map[uint64]PresenceHandler
	nextID    uint64
	monitor   bool
	watchConn net.Conn
	closed    bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewServiceManager returns a registry client for device. It does not
// contact the registry; see Wait.
func NewServiceManager(device string, opts ...Option) *ServiceManager {
	sm := &ServiceManager{
		device:   device,
		busDir:   BusDir(),
		handlers: make(map[uint64]PresenceHandler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sm)
	}

	sm.dir = DeviceDir(sm.busDir, device)
	sm.socket = RegistrySocket(sm.busDir, device)
	sm.log = logger.Component("servicemanager").With(logger.Field{Key: "device", Value: device})
	return sm
}

// Device returns the bus device this manager talks to
func (sm *ServiceManager) Device() string {
	return sm.device
}

// Dir returns the bus directory of the device
func (sm *ServiceManager) Dir() string {
	return sm.dir
}

// IsPresent reports the last observed registry presence
func (sm *ServiceManager) IsPresent() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.present
}

func (sm *ServiceManager) ping(ctx context.Context) bool {
	resp, err := roundTrip(ctx, sm.socket, Request{Command: "ping"})
	return err == nil && resp.Success
}

// Wait blocks until the registry answers. A negative timeout waits
// without bound. It fails immediately with ErrNoDevice when the device
// has no bus directory.
func (sm *ServiceManager) Wait(ctx context.Context, timeout time.Duration) error {
	if timeout >= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if _, err := os.Stat(sm.dir); err != nil {
		return fmt.Errorf("%w: %s", ErrNoDevice, sm.device)
	}

	if sm.ping(ctx) {
		sm.setPresent(true)
		return nil
	}

	var events <-chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if err := watcher.Add(sm.dir); err != nil {
			sm.log.Debug("Cannot watch bus directory, polling", logger.Err(err))
		} else {
			events = watcher.Events
		}
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sm.log.Info("Waiting for registry")
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("registry not available: %w", ctx.Err())
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Name != sm.socket || !ev.Has(fsnotify.Create) {
				continue
			}
		case <-ticker.C:
			if _, err := os.Stat(sm.dir); err != nil {
				return fmt.Errorf("%w: %s", ErrNoDevice, sm.device)
			}
		}

		if sm.ping(ctx) {
			sm.setPresent(true)
			return nil
		}
	}
}

// GetService looks up a live service by its fully qualified name
func (sm *ServiceManager) GetService(ctx context.Context, name string) (*RemoteObject, error) {
	resp, err := roundTrip(ctx, sm.socket, Request{Command: "get", Name: name})
	if err != nil {
		return nil, fmt.Errorf("registry lookup failed: %w", err)
	}
	if !resp.Success {
		if resp.Error == ErrServiceNotFound.Error() {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
		}
		return nil, fmt.Errorf("registry lookup failed: %s", resp.Error)
	}

	return &RemoteObject{name: name, addr: resp.Address}, nil
}

// AddService registers obj under name. A bare instance name is qualified
// with the object's interface.
func (sm *ServiceManager) AddService(ctx context.Context, name string, obj *LocalObject) int32 {
	if !strings.Contains(name, "/") {
		name = obj.Interface() + "/" + name
	}

	resp, err := roundTrip(ctx, sm.socket, Request{Command: "add", Name: name, Address: obj.Addr()})
	if err != nil {
		sm.log.Warn("Failed to reach registry", logger.Field{Key: "name", Value: name}, logger.Err(err))
		return StatusDeadObject
	}
	if !resp.Success {
		sm.log.Warn("Registry refused service", logger.Field{Key: "name", Value: name}, logger.Field{Key: "reason", Value: resp.Error})
		if resp.Status != StatusOK {
			return resp.Status
		}
		return StatusFailed
	}
	return StatusOK
}

// ListServices returns the names known to the registry
func (sm *ServiceManager) ListServices(ctx context.Context) ([]string, error) {
	resp, err := roundTrip(ctx, sm.socket, Request{Command: "list"})
	if err != nil {
		return nil, fmt.Errorf("registry list failed: %w", err)
	}
	if !resp.Success {
		return nil, errors.New(resp.Error)
	}
	return resp.Names, nil
}

// AddPresenceHandler installs fn and starts monitoring the registry. fn
// runs on the monitor goroutine, once per presence transition.
func (sm *ServiceManager) AddPresenceHandler(fn PresenceHandler) uint64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.nextID++
	id := sm.nextID
	sm.handlers[id] = fn

	if !sm.monitor && !sm.closed {
		sm.monitor = true
		sm.wg.Add(1)
		go sm.runMonitor()
	}
	return id
}

// RemoveHandler uninstalls a presence handler
func (sm *ServiceManager) RemoveHandler(id uint64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.handlers, id)
}

func (sm *ServiceManager) setPresent(present bool) {
	sm.mu.Lock()
	if sm.present == present {
		sm.mu.Unlock()
		return
	}
	sm.present = present
	handlers := make([]PresenceHandler, 0, len(sm.handlers))
	for _, fn := range sm.handlers {
		handlers = append(handlers, fn)
	}
	sm.mu.Unlock()

	sm.log.Debug("Registry presence changed", logger.Field{Key: "present", Value: present})
	for _, fn := range handlers {
		fn(present)
	}
}

func (sm *ServiceManager) openWatch() (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultIOTimeout)
	defer cancel()

	conn, err := dial(ctx, sm.socket)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(conn, Request{Command: "watch"}); err != nil {
		conn.Close()
		return nil, err
	}

	reader := bufio.NewReader(conn)
	var resp Response
	if err := readFrame(reader, &resp); err != nil {
		conn.Close()
		return nil, err
	}
	if !resp.Success {
		conn.Close()
		return nil, errors.New(resp.Error)
	}

	conn.SetDeadline(time.Time{})
	return conn, nil
}

// runMonitor holds a watch connection open while the registry is up and
// redials on a timer while it is down.
func (sm *ServiceManager) runMonitor() {
	defer sm.wg.Done()

	buf := make([]byte, 64)
	for {
		conn, err := sm.openWatch()
		if err == nil {
			sm.mu.Lock()
			if sm.closed {
				sm.mu.Unlock()
				conn.Close()
				return
			}
			sm.watchConn = conn
			sm.mu.Unlock()

			sm.setPresent(true)
			for {
				if _, err := conn.Read(buf); err != nil {
					break
				}
			}
			conn.Close()

			sm.mu.Lock()
			sm.watchConn = nil
			sm.mu.Unlock()
		}

		select {
		case <-sm.done:
			return
		default:
		}
		sm.setPresent(false)

		select {
		case <-sm.done:
			return
		case <-time.After(pollInterval):
		}
	}
}

// Close stops presence monitoring
func (sm *ServiceManager) Close() error {
	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		return nil
	}
	sm.closed = true
	close(sm.done)
	if sm.watchConn != nil {
		sm.watchConn.Close()
	}
	sm.handlers = make(map[uint64]PresenceHandler)
	sm.mu.Unlock()

	sm.wg.Wait()
	return nil
}
