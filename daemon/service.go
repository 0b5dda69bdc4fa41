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
	"os/signal"
	"sync"
	"syscall"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// State is the lifecycle stage of a HalService
type State int

const (
	StateInit State = iota
	StateWaitingForRegistry
	StateRegistering
	StateRegistered
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateWaitingForRegistry:
		return "waiting-for-registry"
	case StateRegistering:
		return "registering"
	case StateRegistered:
		return "registered"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Implementation answers the transactions of one hosted interface
type Implementation interface {
	Name() string
	Reply(req *binder.RemoteRequest) (*binder.Writer, int32)
}

// HalService registers an Implementation with the device's registry and
// serves it until shut down. Registration is repeated whenever the
// registry comes back after going away.
type HalService struct {
	id   types.ServiceIdentity
	impl Implementation
	sm   *binder.ServiceManager
	loop *Loop
	log  logger.Logger

	mu    sync.Mutex
	state State
	local *binder.LocalObject

	// Loop-owned
	exitCode    int
	registering bool
}

// NewHalService prepares a host for impl under id. Nothing touches the
// bus until Run.
func NewHalService(id types.ServiceIdentity, impl Implementation, opts ...binder.Option) *HalService {
	return &HalService{
		id:       id,
		impl:     impl,
		sm:       binder.NewServiceManager(id.Device, opts...),
		loop:     NewLoop(),
		log:      logger.Component("hal").With(logger.Field{Key: "service", Value: id.String()}),
		state:    StateInit,
		exitCode: 1,
	}
}

// State returns the current lifecycle stage
func (s *HalService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *HalService) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()

	if prev != state {
		s.log.Debug("State changed",
			logger.Field{Key: "from", Value: prev.String()},
			logger.Field{Key: "to", Value: state.String()})
	}
}

// Run blocks until SIGINT, SIGTERM or ctx cancellation. It returns 0 if
// registration succeeded at least once and 1 otherwise.
func (s *HalService) Run(ctx context.Context) int {
	// Covers the registry wait, before the loop's own watch exists
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.setState(StateWaitingForRegistry)
	if err := s.sm.Wait(ctx, -1); err != nil {
		s.log.Error("Registry not available", logger.Err(err))
		s.setState(StateTerminated)
		return 1
	}

	local, err := binder.NewLocalObject(s.sm, s.id.Interface, s.handleTransaction)
	if err != nil {
		s.log.Error("Failed to create local object", logger.Err(err))
		s.setState(StateTerminated)
		return 1
	}
	s.mu.Lock()
	s.local = local
	s.mu.Unlock()

	presenceID := s.sm.AddPresenceHandler(func(present bool) {
		s.loop.Post(func() { s.onPresence(present) })
	})
	sigID := s.loop.AddSignalWatch(func(sig os.Signal) {
		s.log.Info("Shutting down", logger.Field{Key: "signal", Value: sig.String()})
		s.loop.Quit()
	}, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			s.loop.Quit()
		case <-s.loop.Done():
		}
	}()

	s.loop.Post(func() { s.onPresence(s.sm.IsPresent()) })
	s.loop.Run()

	s.setState(StateShuttingDown)
	s.loop.RemoveSignalWatch(sigID)
	s.sm.RemoveHandler(presenceID)

	s.setState(StateTerminated)
	return s.exitCode
}

func (s *HalService) onPresence(present bool) {
	if !present {
		s.log.Warn("Registry went away")
		if s.State() == StateRegistered {
			s.setState(StateWaitingForRegistry)
		}
		return
	}

	if s.registering {
		return
	}
	s.register()
}

// register runs AddService off the loop and posts the result back
func (s *HalService) register() {
	s.registering = true
	s.setState(StateRegistering)

	s.mu.Lock()
	local := s.local
	s.mu.Unlock()

	go func() {
		status := s.sm.AddService(context.Background(), s.id.Slot, local)
		s.loop.Post(func() { s.onAdded(status) })
	}()
}

func (s *HalService) onAdded(status int32) {
	s.registering = false

	if !binder.StatusIsOK(status) {
		s.log.Error("Failed to register service", logger.Field{Key: "status", Value: binder.StatusString(status)})
		s.loop.Quit()
		return
	}

	s.exitCode = 0
	s.setState(StateRegistered)
	s.log.Info("Service registered", logger.Field{Key: "implementation", Value: s.impl.Name()})
}

// handleTransaction runs on an object connection goroutine and hands the
// request to the loop
func (s *HalService) handleTransaction(req *binder.RemoteRequest) (*binder.Writer, int32) {
	var reply *binder.Writer
	status := binder.StatusDeadObject

	ok := s.loop.Invoke(func() {
		if req.Interface != s.id.Interface {
			s.log.Warn("Rejected transaction for foreign interface",
				logger.Field{Key: "interface", Value: req.Interface},
				logger.Field{Key: "code", Value: req.Code})
			status = binder.StatusBadInterface
			return
		}
		reply, status = s.impl.Reply(req)
	})
	if !ok {
		return nil, binder.StatusDeadObject
	}
	return reply, status
}

// Close releases the local object, then the registry client
func (s *HalService) Close() error {
	s.loop.Quit()

	s.mu.Lock()
	local := s.local
	s.local = nil
	s.mu.Unlock()

	if local != nil {
		local.Close()
	}
	return s.sm.Close()
}
