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

package leds

import (
	"context"
	"errors"
	"fmt"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// ErrNoBackend is returned when no candidate light service answered
var ErrNoBackend = errors.New("no light service available")

// Flavor selects the wire dialect of a light service
type Flavor int

const (
	FlavorArray Flavor = iota
	FlavorVector
)

func (f Flavor) String() string {
	switch f {
	case FlavorArray:
		return "array"
	case FlavorVector:
		return "vector"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// Candidate is one service the negotiator may try
type Candidate struct {
	Identity types.ServiceIdentity
	Flavor   Flavor
}

func (c Candidate) String() string {
	return c.Flavor.String() + " " + c.Identity.String()
}

// DefaultCandidates orders the configured services: the array service
// first, then every vector slot in configuration order.
func DefaultCandidates(cfg types.BackendConfig) []Candidate {
	candidates := []Candidate{{Identity: cfg.Array, Flavor: FlavorArray}}
	for _, id := range cfg.VectorIdentities() {
		candidates = append(candidates, Candidate{Identity: id, Flavor: FlavorVector})
	}
	return candidates
}

// ConnectFunc opens a backend for one candidate
type ConnectFunc func(ctx context.Context, c Candidate) (Backend, error)

// DialConnect connects over the bus and wraps the connection in the
// backend matching the candidate's flavor
func DialConnect(opts ...binder.Option) ConnectFunc {
	return func(ctx context.Context, c Candidate) (Backend, error) {
		conn, err := binder.Dial(ctx, c.Identity, opts...)
		if err != nil {
			return nil, err
		}

		switch c.Flavor {
		case FlavorArray:
			return NewArrayBackend(conn), nil
		case FlavorVector:
			return NewVectorBackend(conn), nil
		default:
			conn.Close()
			return nil, fmt.Errorf("unsupported flavor %s", c.Flavor)
		}
	}
}

// Negotiator tries candidates in order; the first one that connects wins
type Negotiator struct {
	candidates []Candidate
	connect    ConnectFunc
	log        logger.Logger
}

func NewNegotiator(candidates []Candidate, connect ConnectFunc) *Negotiator {
	return &Negotiator{
		candidates: candidates,
		connect:    connect,
		log:        logger.Component("leds"),
	}
}

// Connect returns the first backend that connects, or ErrNoBackend
// joined with every attempt's error
func (n *Negotiator) Connect(ctx context.Context) (Backend, error) {
	var errs []error
	for _, c := range n.candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		backend, err := n.connect(ctx, c)
		if err == nil {
			n.log.Info("Connected to light service", logger.Field{Key: "candidate", Value: c.String()})
			return backend, nil
		}

		n.log.Debug("Light service unavailable",
			logger.Field{Key: "candidate", Value: c.String()}, logger.Err(err))
		errs = append(errs, fmt.Errorf("%s: %w", c, err))
	}

	return nil, errors.Join(append([]error{ErrNoBackend}, errs...)...)
}
