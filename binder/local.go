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
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/we-are-mono/droidleds/daemon/logger"
)

// RemoteRequest is an inbound transaction
type RemoteRequest struct {
	Interface string
	Code      uint32
	Data      []byte
}

// Reader returns a parcel reader over the request payload
func (r *RemoteRequest) Reader() *Reader {
	return NewReader(r.Data)
}

// TransactionHandler answers an inbound transaction. A nil reply sends
// only the status.
type TransactionHandler func(req *RemoteRequest) (*Writer, int32)

// LocalObject is a service endpoint hosted by this process
type LocalObject struct {
	iface    string
	addr     string
	listener net.Listener
	handler  TransactionHandler
	log      logger.Logger
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewLocalObject listens on a fresh object socket in the device's bus
// directory and serves transactions with handler.
func NewLocalObject(sm *ServiceManager, iface string, handler TransactionHandler) (*LocalObject, error) {
	addr := filepath.Join(sm.Dir(), "obj-"+uuid.NewString()+".sock")

	listener, err := net.Listen("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create object socket: %w", err)
	}
	if err := os.Chmod(addr, 0666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	obj := &LocalObject{
		iface:    iface,
		addr:     addr,
		listener: listener,
		handler:  handler,
		log:      logger.Component("object").With(logger.Field{Key: "interface", Value: iface}),
		done:     make(chan struct{}),
	}

	obj.wg.Add(1)
	go obj.serve()
	return obj, nil
}

// Interface returns the interface name the object was created for
func (o *LocalObject) Interface() string {
	return o.iface
}

// Addr returns the object socket path
func (o *LocalObject) Addr() string {
	return o.addr
}

func (o *LocalObject) serve() {
	defer o.wg.Done()

	for {
		conn, err := o.listener.Accept()
		if err != nil {
			select {
			case <-o.done:
				return
			default:
				o.log.Error("Failed to accept connection", logger.Err(err))
				continue
			}
		}

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.handleConnection(conn)
		}()
	}
}

func (o *LocalObject) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(defaultIOTimeout))

	var req Request
	if err := readFrame(bufio.NewReader(conn), &req); err != nil {
		writeFrame(conn, Response{Success: false, Status: StatusFailed, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.Command != "transact" {
		writeFrame(conn, Response{Success: false, Status: StatusFailed, Error: fmt.Sprintf("unknown command: %s", req.Command)})
		return
	}

	reply, status := o.handler(&RemoteRequest{
		Interface: req.Interface,
		Code:      req.Code,
		Data:      req.Data,
	})

	if err := writeFrame(conn, Response{Success: true, Status: status, Data: reply.Bytes()}); err != nil {
		o.log.Warn("Failed to send reply",
			logger.Field{Key: "code", Value: req.Code},
			logger.Err(err))
	}
}

// Close stops serving and removes the object socket
func (o *LocalObject) Close() error {
	o.once.Do(func() {
		close(o.done)
		o.listener.Close()
		o.wg.Wait()
		os.Remove(o.addr)
	})
	return nil
}
