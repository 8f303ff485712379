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

package corecast

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dexstream-io/dexstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recvResult struct {
	frame []byte
	err   error
}

type fakeStream struct {
	results chan recvResult
}

func newFakeStream() *fakeStream {
	return &fakeStream{results: make(chan recvResult, 10)}
}

func (f *fakeStream) push(frame string) { f.results <- recvResult{frame: []byte(frame)} }

func (f *fakeStream) fail(err error) { f.results <- recvResult{err: err} }

func (f *fakeStream) Recv() ([]byte, error) {
	r := <-f.results
	return r.frame, r.err
}

func testSource(t *testing.T, stream frameStream, cancel func(), h dexstream.Handler) *Source {
	t.Helper()
	req, err := dexstream.NewSubscriptionRequest(dexstream.StreamTypeDexTrades)
	require.NoError(t, err)
	return newSource(stream, cancel, req, h, JSONWire{}, zlog)
}

func waitTerminated(t *testing.T, s *Source) {
	t.Helper()
	select {
	case <-s.Terminated():
	case <-time.After(time.Second):
		t.Fatal("source did not terminate")
	}
}

func TestSourceDeliversDecodedMessages(t *testing.T) {
	var slots []uint64
	h := dexstream.HandlerFunc(func(msg *dexstream.Message) error {
		slots = append(slots, msg.Slot)
		return nil
	})

	stream := newFakeStream()
	stream.push(`{"slot":1,"side":"buy"}`)
	stream.push(`{"slot":2,"side":"sell"}`)
	stream.fail(io.EOF)

	s := testSource(t, stream, func() {}, h)
	go s.Run()

	waitTerminated(t, s)
	assert.NoError(t, s.Err())
	assert.Equal(t, []uint64{1, 2}, slots)
}

func TestSourceStampsStreamType(t *testing.T) {
	var got dexstream.StreamType
	h := dexstream.HandlerFunc(func(msg *dexstream.Message) error {
		got = msg.Type
		return nil
	})

	stream := newFakeStream()
	stream.push(`{"slot":1}`)
	stream.fail(io.EOF)

	s := testSource(t, stream, func() {}, h)
	go s.Run()

	waitTerminated(t, s)
	assert.Equal(t, dexstream.StreamTypeDexTrades, got)
}

func TestSourceStreamErrorShutsDown(t *testing.T) {
	stream := newFakeStream()
	streamErr := fmt.Errorf("connection reset")
	stream.fail(streamErr)

	s := testSource(t, stream, func() {}, dexstream.HandlerFunc(func(msg *dexstream.Message) error { return nil }))
	go s.Run()

	waitTerminated(t, s)
	assert.Equal(t, streamErr, s.Err())
}

func TestSourceDecodeErrorShutsDown(t *testing.T) {
	stream := newFakeStream()
	stream.push(`not json`)

	s := testSource(t, stream, func() {}, dexstream.HandlerFunc(func(msg *dexstream.Message) error { return nil }))
	go s.Run()

	waitTerminated(t, s)
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "unable to decode")
}

func TestSourceHandlerErrorShutsDown(t *testing.T) {
	handlerErr := fmt.Errorf("handler broke")
	stream := newFakeStream()
	stream.push(`{"slot":1}`)

	s := testSource(t, stream, func() {}, dexstream.HandlerFunc(func(msg *dexstream.Message) error { return handlerErr }))
	go s.Run()

	waitTerminated(t, s)
	assert.Equal(t, handlerErr, s.Err())
}

func TestSourceShutdownCancelsStream(t *testing.T) {
	cancelled := make(chan struct{})
	stream := newFakeStream()

	s := testSource(t, stream, func() { close(cancelled) }, dexstream.HandlerFunc(func(msg *dexstream.Message) error { return nil }))
	go s.Run()

	s.Shutdown(nil)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("stream context was not cancelled on shutdown")
	}
}
