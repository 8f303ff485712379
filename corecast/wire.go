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

	"github.com/dexstream-io/dexstream"
	"github.com/sugawarayuuta/sonnet"
)

// WireCodec translates between the vendor's frames and this library's types.
// The vendor owns the schema; implementations live at the integration
// boundary and can be swapped without touching the stream machinery.
type WireCodec interface {
	EncodeRequest(req *dexstream.SubscriptionRequest) ([]byte, error)
	DecodeMessage(frame []byte) (*dexstream.Message, error)
}

// JSONWire speaks the feed's JSON mapping. Address fields travel in base58,
// trade sides as "buy"/"sell".
type JSONWire struct{}

type jsonFilters struct {
	Programs []string `json:"programs,omitempty"`
	Pool     []string `json:"pool,omitempty"`
	Tokens   []string `json:"tokens,omitempty"`
	Traders  []string `json:"traders,omitempty"`
	Signers  []string `json:"signers,omitempty"`
}

type jsonSubscribeRequest struct {
	Type    string      `json:"type"`
	Filters jsonFilters `json:"filters"`
}

type jsonMessage struct {
	Type      string   `json:"type,omitempty"`
	Slot      uint64   `json:"slot,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Program   string   `json:"program,omitempty"`
	Pool      string   `json:"pool,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
	Trader    string   `json:"trader,omitempty"`
	Signers   []string `json:"signers,omitempty"`
	Side      string   `json:"side,omitempty"`
}

func (JSONWire) EncodeRequest(req *dexstream.SubscriptionRequest) ([]byte, error) {
	out := jsonSubscribeRequest{
		Type: req.StreamType().String(),
		Filters: jsonFilters{
			Programs: encodeAddresses(req.Programs()),
			Pool:     encodeAddresses(req.Pools()),
			Tokens:   encodeAddresses(req.Tokens()),
			Traders:  encodeAddresses(req.Traders()),
			Signers:  encodeAddresses(req.Signers()),
		},
	}
	return sonnet.Marshal(out)
}

func (JSONWire) DecodeMessage(frame []byte) (*dexstream.Message, error) {
	in := new(jsonMessage)
	if err := sonnet.Unmarshal(frame, in); err != nil {
		return nil, fmt.Errorf("unable to decode frame: %w", err)
	}

	msg := &dexstream.Message{
		Type: dexstream.StreamType(in.Type),
		Slot: in.Slot,
	}

	var err error
	if msg.Signature, err = decodeAddress(in.Signature); err != nil {
		return nil, err
	}
	if msg.Program, err = decodeAddress(in.Program); err != nil {
		return nil, err
	}
	if msg.Pool, err = decodeAddress(in.Pool); err != nil {
		return nil, err
	}
	if msg.Trader, err = decodeAddress(in.Trader); err != nil {
		return nil, err
	}
	if msg.Tokens, err = decodeAddresses(in.Tokens); err != nil {
		return nil, err
	}
	if msg.Signers, err = decodeAddresses(in.Signers); err != nil {
		return nil, err
	}

	switch in.Side {
	case "buy":
		msg.Side = dexstream.SideBuy
	case "sell":
		msg.Side = dexstream.SideSell
	}

	return msg, nil
}

func encodeAddresses(in []dexstream.Address) (out []string) {
	for _, addr := range in {
		out = append(out, addr.String())
	}
	return out
}

func decodeAddress(in string) (dexstream.Address, error) {
	if in == "" {
		return nil, nil
	}
	return dexstream.AddressFromBase58(in)
}

func decodeAddresses(in []string) (out []dexstream.Address, err error) {
	for _, raw := range in {
		addr, err := decodeAddress(raw)
		if err != nil {
			return nil, err
		}
		if !addr.IsEmpty() {
			out = append(out, addr)
		}
	}
	return out, nil
}
