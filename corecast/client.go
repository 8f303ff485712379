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

	"github.com/dexstream-io/dexstream"
	"github.com/streamingfast/dgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// one server-streaming RPC per stream type on the vendor service
var streamMethods = map[dexstream.StreamType]string{
	dexstream.StreamTypeDexTrades:    "/corecast.CoreCast/DexTrades",
	dexstream.StreamTypeDexOrders:    "/corecast.CoreCast/DexOrders",
	dexstream.StreamTypeDexPools:     "/corecast.CoreCast/DexPools",
	dexstream.StreamTypeTransactions: "/corecast.CoreCast/Transactions",
	dexstream.StreamTypeTransfers:    "/corecast.CoreCast/Transfers",
	dexstream.StreamTypeBalances:     "/corecast.CoreCast/Balances",
}

// Dial opens the client transport to the feed endpoint. Plaintext
// connections are only meant for local development against a sidecar.
func Dial(address string, insecureConn bool) (*grpc.ClientConn, error) {
	if insecureConn {
		return dgrpc.NewInternalClient(address)
	}
	return dgrpc.NewExternalClient(address)
}

// Client opens subscriptions against the vendor's streaming service. It is
// cheap, carries no state besides the transport, and a single instance can
// open any number of consecutive subscriptions.
type Client struct {
	conn  *grpc.ClientConn
	token string
	codec WireCodec

	logger *zap.Logger
}

type ClientOption = func(c *Client)

func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

func WithWireCodec(codec WireCodec) ClientOption {
	return func(c *Client) {
		c.codec = codec
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(conn *grpc.ClientConn, options ...ClientOption) *Client {
	c := &Client{
		conn:   conn,
		codec:  JSONWire{},
		logger: zlog,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// SourceFactory adapts the client into the supervisor's factory contract.
// The subscribe call happens synchronously inside the factory, so a dead
// endpoint surfaces as a factory error instead of a dead source.
func (c *Client) SourceFactory(ctx context.Context) dexstream.SourceFactory {
	return func(req *dexstream.SubscriptionRequest, h dexstream.Handler) (dexstream.Source, error) {
		streamCtx, cancel := context.WithCancel(ctx)
		stream, err := c.subscribe(streamCtx, req)
		if err != nil {
			cancel()
			return nil, err
		}
		return newSource(stream, cancel, req, h, c.codec, c.logger), nil
	}
}

func (c *Client) subscribe(ctx context.Context, req *dexstream.SubscriptionRequest) (frameStream, error) {
	method, ok := streamMethods[req.StreamType()]
	if !ok {
		return nil, dexstream.NewErrInvalidArg("no subscribe method for stream type %q", req.StreamType())
	}

	payload, err := c.codec.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encoding subscribe request: %w", err)
	}

	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}

	c.logger.Debug("opening subscribe stream", zap.String("method", method))
	desc := &grpc.StreamDesc{
		StreamName:    method,
		ServerStreams: true,
	}
	cs, err := c.conn.NewStream(ctx, desc, method, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		return nil, fmt.Errorf("opening %s stream: %w", req.StreamType(), err)
	}

	frame := rawFrame(payload)
	if err := cs.SendMsg(&frame); err != nil {
		return nil, fmt.Errorf("sending subscribe request: %w", err)
	}
	if err := cs.CloseSend(); err != nil {
		return nil, fmt.Errorf("closing send side: %w", err)
	}

	return grpcFrameStream{cs}, nil
}

// frameStream is the receive side of one open subscription.
type frameStream interface {
	Recv() ([]byte, error)
}

type grpcFrameStream struct {
	cs grpc.ClientStream
}

func (s grpcFrameStream) Recv() ([]byte, error) {
	frame := new(rawFrame)
	if err := s.cs.RecvMsg(frame); err != nil {
		return nil, err
	}
	return *frame, nil
}
