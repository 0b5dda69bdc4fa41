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
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// defaultIOTimeout bounds a single request/response exchange when the
// caller's context carries no deadline
const defaultIOTimeout = 5 * time.Second

// Request is one frame sent to the registry or to an object socket
type Request struct {
	Command   string `json:"command"` // ping, add, get, list, watch, transact
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Interface string `json:"interface,omitempty"`
	Code      uint32 `json:"code,omitempty"`
	Data      []byte `json:"data,omitempty"` // Parcel payload
}

// Response is the reply frame
type Response struct {
	Names   []string `json:"names,omitempty"`
	Data    []byte   `json:"data,omitempty"`
	Address string   `json:"address,omitempty"`
	Error   string   `json:"error,omitempty"`
	Status  int32    `json:"status"`
	Success bool     `json:"success"`
}

func writeFrame(conn net.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func readFrame(r *bufio.Reader, v interface{}) error {
	data, err := r.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse frame: %w", err)
	}
	return nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", addr)
	if err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultIOTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// roundTrip sends one request on a fresh connection and reads one response
func roundTrip(ctx context.Context, addr string, req Request) (*Response, error) {
	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := writeFrame(conn, req); err != nil {
		return nil, err
	}

	var resp Response
	if err := readFrame(bufio.NewReader(conn), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
