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
)

// rawFrame carries one vendor message across the gRPC boundary untouched.
// The vendor's proto schema stays out of this repository: frames are decoded
// by the configured WireCodec only once they reach the source.
type rawFrame []byte

// rawCodec replaces the default proto codec on the subscribe stream so that
// messages are surfaced as raw bytes. It advertises itself as "proto" since
// that is what actually travels on the wire.
type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	frame, ok := v.(*rawFrame)
	if !ok {
		return nil, fmt.Errorf("raw codec can only marshal raw frames, got %T", v)
	}
	return *frame, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	frame, ok := v.(*rawFrame)
	if !ok {
		return fmt.Errorf("raw codec can only unmarshal into raw frames, got %T", v)
	}
	// gRPC reuses its receive buffers, the frame must own its bytes
	*frame = append(rawFrame(nil), data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }
