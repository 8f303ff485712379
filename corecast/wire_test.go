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
	"testing"

	"github.com/dexstream-io/dexstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
)

const wrappedSol = "So11111111111111111111111111111111111111112"

func TestJSONWireEncodeRequest(t *testing.T) {
	program, err := dexstream.AddressFromBase58(wrappedSol)
	require.NoError(t, err)

	req, err := dexstream.NewSubscriptionRequest(dexstream.StreamTypeDexTrades,
		dexstream.WithPrograms(program),
		dexstream.WithTradeFilter(dexstream.TradeFilterBuys),
	)
	require.NoError(t, err)

	payload, err := JSONWire{}.EncodeRequest(req)
	require.NoError(t, err)

	decoded := new(jsonSubscribeRequest)
	require.NoError(t, sonnet.Unmarshal(payload, decoded))

	assert.Equal(t, "dex_trades", decoded.Type)
	assert.Equal(t, []string{wrappedSol}, decoded.Filters.Programs)
	assert.Empty(t, decoded.Filters.Pool)
}

func TestJSONWireDecodeMessage(t *testing.T) {
	frame := []byte(`{"type":"dex_trades","slot":1234,"signature":"` + wrappedSol + `","side":"sell"}`)

	msg, err := JSONWire{}.DecodeMessage(frame)
	require.NoError(t, err)

	assert.Equal(t, dexstream.StreamTypeDexTrades, msg.Type)
	assert.Equal(t, uint64(1234), msg.Slot)
	assert.Equal(t, wrappedSol, msg.Signature.String())
	assert.Equal(t, dexstream.SideSell, msg.Side)
}

func TestJSONWireDecodeMessageBadAddress(t *testing.T) {
	frame := []byte(`{"slot":1,"signature":"not-base58-0OIl"}`)

	_, err := JSONWire{}.DecodeMessage(frame)
	require.Error(t, err)
}

func TestJSONWireDecodeMessageBadFrame(t *testing.T) {
	_, err := JSONWire{}.DecodeMessage([]byte("not json"))
	require.Error(t, err)
}
