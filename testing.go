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
	"sync"

	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

type TestSourceFactory struct {
	Created chan *TestSource

	mu       sync.Mutex
	failures []error
}

func NewTestSourceFactory() *TestSourceFactory {
	return &TestSourceFactory{
		Created: make(chan *TestSource, 10),
	}
}

// FailNext queues an error returned by the next NewSource call, simulating
// a synchronous connection failure. Queued failures are consumed in order.
func (t *TestSourceFactory) FailNext(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, err)
}

func (t *TestSourceFactory) NewSource(req *SubscriptionRequest, h Handler) (Source, error) {
	t.mu.Lock()
	if len(t.failures) > 0 {
		err := t.failures[0]
		t.failures = t.failures[1:]
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()

	src := NewTestSource(req, h)
	t.Created <- src
	return src, nil
}

func NewTestSource(req *SubscriptionRequest, h Handler) *TestSource {
	return &TestSource{
		Shutter: shutter.New(),
		Request: req,
		handler: h,
		running: make(chan interface{}),
		logger:  zlog,
	}
}

type TestSource struct {
	*shutter.Shutter

	Request *SubscriptionRequest
	handler Handler
	logger  *zap.Logger

	running chan interface{}
}

func (t *TestSource) SetLogger(logger *zap.Logger) {
	t.logger = logger
}

func (t *TestSource) Run() {
	close(t.running)
	<-t.Terminating()
}

func (t *TestSource) Push(msg *Message) error {
	err := t.handler.ProcessMessage(msg)
	if err != nil {
		t.Shutdown(err)
	}
	return err
}

// Fail terminates the source as an unexpected stream error would.
func (t *TestSource) Fail(err error) {
	t.Shutdown(err)
}

func TestMessage(streamType StreamType, slot uint64, side Side) *Message {
	return &Message{
		Type:      streamType,
		Slot:      slot,
		Side:      side,
		Signature: Address{0x1},
	}
}
