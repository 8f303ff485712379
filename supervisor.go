// Copyright 2019 dfuse Platform Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dexstream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateStreaming
	StateReconnectPending
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateReconnectPending:
		return "reconnect_pending"
	case StateShuttingDown:
		return "shutting_down"
	}
	return fmt.Sprintf("unknown (%d)", int32(s))
}

type retryTimer interface {
	Stop() bool
}

// Supervisor owns the lifecycle of one logical subscription: it opens a
// source through its factory, watches for termination and reconnects with
// exponential backoff until stopped. It never holds two subscriptions at
// once, and all state transitions happen under its lock.
type Supervisor struct {
	*shutter.Shutter

	factory SourceFactory
	handler Handler
	policy  ReconnectPolicy

	reportEvery time.Duration
	logger      *zap.Logger

	afterFunc func(d time.Duration, f func()) retryTimer

	mu      sync.Mutex
	state   State
	request *SubscriptionRequest
	current Source
	retry   retryTimer
	attempt uint
	gen     uint64

	// held for reading across each message delivery, taken for writing on
	// shutdown so Stop drains in-flight deliveries before returning
	deliverMu sync.RWMutex

	reloading int32

	intervalMessages uint64
	totalMessages    uint64
	totalReconnects  uint64
}

func NewSupervisor(factory SourceFactory, h Handler, options ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		Shutter:     shutter.New(),
		factory:     factory,
		handler:     h,
		policy:      DefaultReconnectPolicy,
		reportEvery: 30 * time.Second,
		logger:      zlog,
		afterFunc: func(d time.Duration, f func()) retryTimer {
			return time.AfterFunc(d, f)
		},
	}

	for _, option := range options {
		option(s)
	}

	s.OnTerminating(func(_ error) {
		s.mu.Lock()
		s.state = StateShuttingDown
		if s.retry != nil {
			s.retry.Stop()
			s.retry = nil
		}
		src := s.current
		s.current = nil
		s.mu.Unlock()

		s.deliverMu.Lock()
		s.deliverMu.Unlock()

		if src != nil {
			src.Shutdown(nil)
		}

		ActiveStreams.SetUint64(0)
		s.logger.Info("supervisor terminating",
			zap.Uint64("total_messages", atomic.LoadUint64(&s.totalMessages)),
			zap.Uint64("total_reconnects", atomic.LoadUint64(&s.totalReconnects)),
		)
	})

	return s
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the initial subscription. A synchronous failure here is fatal
// to the caller: the error is returned as-is and no reconnect is scheduled.
// Later disconnects are handled internally and retried forever.
func (s *Supervisor) Start(req *SubscriptionRequest) error {
	if req == nil {
		return NewErrInvalidArg("subscription request is required")
	}

	s.mu.Lock()
	if s.state == StateShuttingDown || s.IsTerminating() {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateConnecting
	s.request = req
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if err := s.connect(req, gen); err != nil {
		s.mu.Lock()
		if s.gen == gen && s.state == StateConnecting {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		return fmt.Errorf("opening stream: %w", err)
	}

	if s.reportEvery > 0 {
		go s.reportLoop()
	}
	return nil
}

// Stop cancels any pending reconnect and shuts the current source down
// before returning. It is idempotent, and once it returns no further
// message or reconnect attempt is delivered. It must not be called from
// within a Handler, it waits for in-flight deliveries to complete.
func (s *Supervisor) Stop() {
	s.Shutdown(nil)
}

// Reconfigure tears the current subscription down intentionally and opens a
// new one with the given request. Only one reload is in flight at a time: a
// call overlapping another one is dropped with ErrReloadInFlight, leaving
// state untouched. During shutdown it is a no-op.
func (s *Supervisor) Reconfigure(req *SubscriptionRequest) error {
	if req == nil {
		return NewErrInvalidArg("subscription request is required")
	}
	if s.IsTerminating() {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&s.reloading, 0, 1) {
		return ErrReloadInFlight
	}
	defer atomic.StoreInt32(&s.reloading, 0)

	s.mu.Lock()
	if s.state == StateShuttingDown {
		s.mu.Unlock()
		return nil
	}
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	old := s.current
	s.current = nil
	s.state = StateConnecting
	s.request = req
	s.attempt = 0
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.logger.Info("reconfiguring subscription", zap.Stringer("stream_type", req.StreamType()))

	if old != nil {
		old.Shutdown(nil)
	}

	if err := s.connect(req, gen); err != nil {
		// the previous stream is gone at this point, fall back on the
		// regular reconnection path with the new request
		s.scheduleReconnect(req, gen, err)
		return fmt.Errorf("reopening stream: %w", err)
	}
	return nil
}

// connect runs one connection attempt. The attempt only installs its source
// if gen still matches: a reload or a newer retry that raced ahead while the
// factory was connecting owns the subscription, and the late source is shut
// down instead of installed.
func (s *Supervisor) connect(req *SubscriptionRequest, gen uint64) error {
	src, err := s.factory(req, s.guardedHandler(gen))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateShuttingDown || s.IsTerminating() {
		s.mu.Unlock()
		src.Shutdown(ErrShuttingDown)
		return ErrShuttingDown
	}
	if s.gen != gen {
		s.mu.Unlock()
		src.Shutdown(nil)
		return nil
	}
	s.current = src
	s.state = StateStreaming
	s.attempt = 0
	s.mu.Unlock()

	ActiveStreams.SetUint64(1)
	s.logger.Info("stream established", zap.Stringer("stream_type", req.StreamType()))

	go src.Run()
	go s.watch(src, req)
	return nil
}

// watch waits for the source to die. An intentional teardown (Stop or
// Reconfigure replaced the source first) is ignored; anything else rolls
// into the backoff reconnection path.
func (s *Supervisor) watch(src Source, req *SubscriptionRequest) {
	<-src.Terminated()

	s.mu.Lock()
	if s.current != src || s.state != StateStreaming {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.scheduleReconnectLocked(req, src.Err())
	s.mu.Unlock()

	ActiveStreams.SetUint64(0)
}

func (s *Supervisor) scheduleReconnect(req *SubscriptionRequest, gen uint64, cause error) {
	s.mu.Lock()
	if s.gen != gen || s.state == StateShuttingDown || s.IsTerminating() {
		s.mu.Unlock()
		return
	}
	s.scheduleReconnectLocked(req, cause)
	s.mu.Unlock()
}

// scheduleReconnectLocked arms the retry timer, s.mu held by the caller.
func (s *Supervisor) scheduleReconnectLocked(req *SubscriptionRequest, cause error) {
	s.state = StateReconnectPending
	attempt := s.attempt
	delay := s.policy.DelayFor(attempt)
	s.attempt++
	gen := s.gen
	s.retry = s.afterFunc(delay, func() { s.retryConnect(req, gen) })

	ReconnectAttempts.Inc()
	atomic.AddUint64(&s.totalReconnects, 1)
	s.logger.Info("stream disconnected, reconnect scheduled",
		zap.Error(cause),
		zap.Uint("attempt", attempt),
		zap.Duration("delay", delay),
	)
}

func (s *Supervisor) retryConnect(req *SubscriptionRequest, gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateReconnectPending || s.IsTerminating() {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.retry = nil
	s.gen++
	attemptGen := s.gen
	s.mu.Unlock()

	if err := s.connect(req, attemptGen); err != nil {
		s.scheduleReconnect(req, attemptGen, err)
	}
}

// guardedHandler only forwards messages while the supervisor is streaming
// and the source that produced them is still the installed one, so nothing
// leaks through once a teardown started. It also keeps the message tallies.
func (s *Supervisor) guardedHandler(gen uint64) Handler {
	return HandlerFunc(func(msg *Message) error {
		s.deliverMu.RLock()
		defer s.deliverMu.RUnlock()

		s.mu.Lock()
		live := s.gen == gen && s.state == StateStreaming
		s.mu.Unlock()
		if !live {
			return nil
		}

		atomic.AddUint64(&s.intervalMessages, 1)
		atomic.AddUint64(&s.totalMessages, 1)
		MessagesReceived.Inc()
		if len(msg.Payload) != 0 {
			BytesReceived.AddInt(len(msg.Payload))
		}

		return s.handler.ProcessMessage(msg)
	})
}

func (s *Supervisor) reportLoop() {
	ticker := time.NewTicker(s.reportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.Terminating():
			return
		case <-ticker.C:
			count := atomic.SwapUint64(&s.intervalMessages, 0)
			s.mu.Lock()
			state := s.state
			streamType := s.request.StreamType()
			s.mu.Unlock()
			s.logger.Info("stream progress",
				zap.Uint64("messages", count),
				zap.Stringer("stream_type", streamType),
				zap.Stringer("state", state),
			)
		}
	}
}
