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
	"context"
	"fmt"
	"io"

	"github.com/dexstream-io/dexstream"
	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

// Source reads one open subscription until the stream dies or it is shut
// down. A clean end of stream terminates with a nil error; the supervisor
// treats both the same way.
type Source struct {
	*shutter.Shutter

	stream  frameStream
	request *dexstream.SubscriptionRequest
	handler dexstream.Handler
	codec   WireCodec

	logger *zap.Logger
}

func newSource(
	stream frameStream,
	cancel context.CancelFunc,
	req *dexstream.SubscriptionRequest,
	h dexstream.Handler,
	codec WireCodec,
	logger *zap.Logger,
) *Source {
	s := &Source{
		Shutter: shutter.New(),
		stream:  stream,
		request: req,
		handler: h,
		codec:   codec,
		logger:  logger.With(zap.Stringer("stream_type", req.StreamType())),
	}

	s.OnTerminating(func(_ error) {
		cancel()
	})

	return s
}

func (s *Source) Run() {
	s.logger.Info("corecast source reading messages")

	for {
		if s.IsTerminating() {
			return
		}

		frame, err := s.stream.Recv()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("corecast stream ended cleanly")
				s.Shutdown(nil)
				return
			}
			s.Shutdown(err)
			return
		}

		msg, err := s.codec.DecodeMessage(frame)
		if err != nil {
			s.Shutdown(fmt.Errorf("unable to decode stream message: %w", err))
			return
		}
		if msg.Type == "" {
			msg.Type = s.request.StreamType()
		}
		msg.Payload = frame

		if traceEnabled {
			s.logger.Debug("received message", zap.Stringer("message", msg))
		}

		if err := s.handler.ProcessMessage(msg); err != nil {
			s.Shutdown(err)
			return
		}
	}
}
