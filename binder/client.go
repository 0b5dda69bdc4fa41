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
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// ErrClosed is returned when transacting on a released handle
var ErrClosed = errors.New("binder: handle closed")

// RemoteObject is a handle to a service obtained from the registry
type RemoteObject struct {
	name string
	addr string

	mu     sync.Mutex
	closed bool
}

// Name returns the registry name the object was looked up under
func (o *RemoteObject) Name() string {
	return o.name
}

// Transact sends one transaction and returns the raw reply payload with
// the remote status word.
func (o *RemoteObject) Transact(ctx context.Context, iface string, code uint32, data []byte) ([]byte, int32, error) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, StatusDeadObject, ErrClosed
	}

	resp, err := roundTrip(ctx, o.addr, Request{
		Command:   "transact",
		Interface: iface,
		Code:      code,
		Data:      data,
	})
	if err != nil {
		return nil, StatusDeadObject, err
	}
	if !resp.Success {
		return nil, StatusFailed, errors.New(resp.Error)
	}
	return resp.Data, resp.Status, nil
}

func (o *RemoteObject) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// Client issues transactions against a remote object on behalf of one
// interface. At most one transaction is in flight at a time.
type Client struct {
	remote *RemoteObject
	iface  string
	log    logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewClient binds a remote object to an interface name
func NewClient(remote *RemoteObject, iface string) *Client {
	return &Client{
		remote: remote,
		iface:  iface,
		log:    logger.Component("client").With(logger.Field{Key: "interface", Value: iface}),
	}
}

// Interface returns the bound interface name
func (c *Client) Interface() string {
	return c.iface
}

// Transact sends code with the payload built by w and waits for the
// reply. The status is StatusOK only when the remote side answered with
// success; transport failures map to StatusDeadObject.
func (c *Client) Transact(code uint32, w *Writer) (*Reader, int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return NewReader(nil), StatusDeadObject
	}

	data, status, err := c.remote.Transact(context.Background(), c.iface, code, w.Bytes())
	if err != nil {
		c.log.Debug("Transaction failed",
			logger.Field{Key: "code", Value: code},
			logger.Field{Key: "status", Value: StatusString(status)},
			logger.Err(err))
	}
	return NewReader(data), status
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Connection bundles everything Dial opened for one service
type Connection struct {
	Identity types.ServiceIdentity
	SM       *ServiceManager
	Remote   *RemoteObject
	Client   *Client
}

// Close releases the client, then the remote object, then the registry client
func (c *Connection) Close() error {
	if c.Client != nil {
		c.Client.Close()
	}
	if c.Remote != nil {
		c.Remote.Close()
	}
	if c.SM != nil {
		return c.SM.Close()
	}
	return nil
}

// Dial opens the device's registry, waits for it, looks up the service
// and binds a client to it.
func Dial(ctx context.Context, id types.ServiceIdentity, opts ...Option) (*Connection, error) {
	sm := NewServiceManager(id.Device, opts...)

	if err := sm.Wait(ctx, -1); err != nil {
		sm.Close()
		return nil, fmt.Errorf("failed to open %s: %w", id.Device, err)
	}

	remote, err := sm.GetService(ctx, id.FQName())
	if err != nil {
		sm.Close()
		return nil, err
	}

	return &Connection{
		Identity: id,
		SM:       sm,
		Remote:   remote,
		Client:   NewClient(remote, id.Interface),
	}, nil
}
