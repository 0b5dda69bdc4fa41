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
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/we-are-mono/droidleds/daemon/logger"
)

// livenessTimeout bounds the dial used to check that a registered object is still serving
const livenessTimeout = 500 * time.Millisecond

// handlerFunc is a function that handles a registry command
type handlerFunc func(Request) Response

// Registry is the servicemanager for one bus device. It maps fully
// qualified service names onto object socket addresses.
type Registry struct {
	device   string
	dir      string
	socket   string
	listener net.Listener
	done     chan struct{}
	handlers map[string]handlerFunc
	log      logger.Logger

	mu       sync.Mutex
	services map[string]string
	watchers map[net.Conn]struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRegistry creates the device directory under busDir and listens on
// its servicemanager socket. A stale socket from a previous run is replaced.
func NewRegistry(busDir, device string) (*Registry, error) {
	dir := DeviceDir(busDir, device)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bus directory: %w", err)
	}

	socket := RegistrySocket(busDir, device)
	os.Remove(socket)

	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	if err := os.Chmod(socket, 0666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	r := &Registry{
		device:   device,
		dir:      dir,
		socket:   socket,
		listener: listener,
		done:     make(chan struct{}),
		log:      logger.Component("registry").With(logger.Field{Key: "device", Value: device}),
		services: make(map[string]string),
		watchers: make(map[net.Conn]struct{}),
	}

	r.handlers = map[string]handlerFunc{
		"ping": func(req Request) Response { return Response{Success: true} },
		"add":  func(req Request) Response { return r.handleAdd(req.Name, req.Address) },
		"get":  func(req Request) Response { return r.handleGet(req.Name) },
		"list": func(req Request) Response { return r.handleList() },
	}

	return r, nil
}

// Addr returns the registry socket path
func (r *Registry) Addr() string {
	return r.socket
}

// Serve accepts connections until Stop is called
func (r *Registry) Serve() error {
	r.log.Info("Registry listening", logger.Field{Key: "socket", Value: r.socket})

	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.done:
				return nil
			default:
				r.log.Error("Failed to accept connection", logger.Err(err))
				continue
			}
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and every watch connection, which signals
// presence loss to all watchers.
func (r *Registry) Stop() error {
	r.stopOnce.Do(func() {
		close(r.done)
		r.listener.Close()

		r.mu.Lock()
		for conn := range r.watchers {
			conn.Close()
		}
		r.mu.Unlock()

		r.wg.Wait()
		os.Remove(r.socket)
		r.log.Info("Registry stopped")
	})
	return nil
}

func (r *Registry) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)
	conn.SetReadDeadline(time.Now().Add(defaultIOTimeout))

	var req Request
	if err := readFrame(reader, &req); err != nil {
		writeFrame(conn, Response{Success: false, Error: fmt.Sprintf("invalid request: %v", err)})
		conn.Close()
		return
	}

	// watch holds the connection open until either side closes it
	if req.Command == "watch" {
		conn.SetReadDeadline(time.Time{})
		r.handleWatch(conn, reader)
		return
	}

	defer conn.Close()
	if err := writeFrame(conn, r.handleRequest(req)); err != nil {
		r.log.Warn("Failed to write response", logger.Err(err))
	}
}

func (r *Registry) handleRequest(req Request) Response {
	handler, exists := r.handlers[req.Command]
	if !exists {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
	return handler(req)
}

func (r *Registry) handleAdd(name, address string) Response {
	if name == "" || address == "" {
		return Response{Success: false, Status: StatusFailed, Error: "name and address are required"}
	}

	r.mu.Lock()
	_, replaced := r.services[name]
	r.services[name] = address
	r.mu.Unlock()

	r.log.Info("Service added",
		logger.Field{Key: "name", Value: name},
		logger.Field{Key: "replaced", Value: replaced})
	return Response{Success: true, Status: StatusOK}
}

func (r *Registry) handleGet(name string) Response {
	r.mu.Lock()
	address, exists := r.services[name]
	r.mu.Unlock()

	if !exists {
		return Response{Success: false, Error: ErrServiceNotFound.Error()}
	}

	// Prune registrations whose owner went away without telling us
	conn, err := net.DialTimeout("unix", address, livenessTimeout)
	if err != nil {
		r.mu.Lock()
		if r.services[name] == address {
			delete(r.services, name)
		}
		r.mu.Unlock()

		r.log.Info("Pruned dead service",
			logger.Field{Key: "name", Value: name},
			logger.Err(err))
		return Response{Success: false, Error: ErrServiceNotFound.Error()}
	}
	conn.Close()

	return Response{Success: true, Address: address}
}

func (r *Registry) handleList() Response {
	r.mu.Lock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	r.mu.Unlock()

	sort.Strings(names)
	return Response{Success: true, Names: names}
}

func (r *Registry) handleWatch(conn net.Conn, reader *bufio.Reader) {
	defer conn.Close()

	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return
	default:
	}
	r.watchers[conn] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.watchers, conn)
		r.mu.Unlock()
	}()

	if err := writeFrame(conn, Response{Success: true}); err != nil {
		return
	}

	// Nothing further is sent; block until the watcher hangs up or Stop closes us
	io.Copy(io.Discard, reader)
}

// RunRegistry serves a registry until ctx is cancelled
func RunRegistry(ctx context.Context, busDir, device string) error {
	r, err := NewRegistry(busDir, device)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Serve()
	}()

	select {
	case <-ctx.Done():
		r.Stop()
		return <-errCh
	case err := <-errCh:
		r.Stop()
		return err
	}
}
