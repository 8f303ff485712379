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

	"github.com/mr-tron/base58"
)

// StreamType identifies one of the upstream feed's subscription endpoints.
type StreamType string

const (
	StreamTypeDexTrades    StreamType = "dex_trades"
	StreamTypeDexOrders    StreamType = "dex_orders"
	StreamTypeDexPools     StreamType = "dex_pools"
	StreamTypeTransactions StreamType = "transactions"
	StreamTypeTransfers    StreamType = "transfers"
	StreamTypeBalances     StreamType = "balances"
)

var streamTypes = map[StreamType]bool{
	StreamTypeDexTrades:    true,
	StreamTypeDexOrders:    true,
	StreamTypeDexPools:     true,
	StreamTypeTransactions: true,
	StreamTypeTransfers:    true,
	StreamTypeBalances:     true,
}

func ParseStreamType(in string) (StreamType, error) {
	st := StreamType(in)
	if !streamTypes[st] {
		return "", NewErrInvalidArg("unknown stream type %q", in)
	}
	return st, nil
}

func (t StreamType) String() string { return string(t) }

// Side is the taker side of a DEX trade. Streams other than dex_trades
// leave it at SideUnknown.
type Side int8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unknown"
}

// TradeFilter restricts which trade sides are forwarded to the handler.
type TradeFilter string

const (
	TradeFilterAll   TradeFilter = "alltrades"
	TradeFilterBuys  TradeFilter = "buys"
	TradeFilterSells TradeFilter = "sells"
)

func ParseTradeFilter(in string) (TradeFilter, error) {
	switch TradeFilter(in) {
	case TradeFilterAll, TradeFilterBuys, TradeFilterSells:
		return TradeFilter(in), nil
	case "":
		return TradeFilterAll, nil
	}
	return "", NewErrInvalidArg("unknown trade filter %q, accepting one of %q, %q or %q", in, TradeFilterAll, TradeFilterBuys, TradeFilterSells)
}

func (f TradeFilter) Accepts(side Side) bool {
	switch f {
	case TradeFilterBuys:
		return side == SideBuy
	case TradeFilterSells:
		return side == SideSell
	}
	return true
}

// Address is a raw on-chain account address, displayed in base58.
type Address []byte

func AddressFromBase58(in string) (Address, error) {
	out, err := base58.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 address %q: %w", in, err)
	}
	return Address(out), nil
}

func (a Address) IsEmpty() bool { return len(a) == 0 }

func (a Address) String() string {
	if len(a) == 0 {
		return ""
	}
	return base58.Encode(a)
}

// Message is the decoded envelope of one event received from the live
// stream. Fields not applicable to the stream type are left zero; Payload
// always carries the raw upstream frame.
type Message struct {
	Type      StreamType
	Slot      uint64
	Signature Address
	Program   Address
	Pool      Address
	Tokens    []Address
	Trader    Address
	Signers   []Address
	Side      Side

	Payload []byte
}

func (m *Message) ID() string {
	if m == nil {
		return ""
	}
	return m.Signature.String()
}

func (m *Message) String() string {
	if m == nil {
		return "Message <nil>"
	}
	return fmt.Sprintf("%s #%d (%s)", m.Type, m.Slot, m.Signature)
}
