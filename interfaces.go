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

type Shutterer interface {
	Shutdown(error)
	Terminating() <-chan struct{}
	IsTerminating() bool
	Terminated() <-chan struct{}
	IsTerminated() bool
	OnTerminating(f func(error))
	OnTerminated(f func(error))
	Err() error
}

type Handler interface {
	ProcessMessage(msg *Message) error
}

type HandlerFunc func(msg *Message) error

func (h HandlerFunc) ProcessMessage(msg *Message) error {
	return h(msg)
}

// Source produces an unbounded sequence of messages on the handler it was
// built with, until it terminates with an error or a clean end of stream.
type Source interface {
	Shutterer
	Run()
}

// SourceFactory opens one subscription against the upstream feed. An error
// here is a synchronous connection failure: no Source was created and
// nothing needs shutting down.
type SourceFactory func(req *SubscriptionRequest, h Handler) (Source, error)

// MessageFilter gates messages on their way to a handler.
type MessageFilter interface {
	Pass(msg *Message) bool
}
