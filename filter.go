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

// TradeSideFilter drops dex_trades messages whose taker side does not match
// the configured trade filter. Messages from other stream types always pass.
type TradeSideFilter struct {
	filter TradeFilter
}

func NewTradeSideFilter(filter TradeFilter) *TradeSideFilter {
	return &TradeSideFilter{filter: filter}
}

func (f *TradeSideFilter) Pass(msg *Message) bool {
	if msg.Type != StreamTypeDexTrades {
		return true
	}
	return f.filter.Accepts(msg.Side)
}

// AddressSetFilter passes a message when any address extracted from it is
// part of the allowed set. An empty set passes everything.
type AddressSetFilter struct {
	allowed map[string]bool
	extract func(msg *Message) []Address
}

func NewAddressSetFilter(addrs []Address, extract func(msg *Message) []Address) *AddressSetFilter {
	f := &AddressSetFilter{
		allowed: make(map[string]bool, len(addrs)),
		extract: extract,
	}
	for _, addr := range addrs {
		if !addr.IsEmpty() {
			f.allowed[string(addr)] = true
		}
	}
	return f
}

func NewProgramFilter(addrs []Address) *AddressSetFilter {
	return NewAddressSetFilter(addrs, func(msg *Message) []Address { return []Address{msg.Program} })
}

func NewTraderFilter(addrs []Address) *AddressSetFilter {
	return NewAddressSetFilter(addrs, func(msg *Message) []Address { return []Address{msg.Trader} })
}

func NewSignerFilter(addrs []Address) *AddressSetFilter {
	return NewAddressSetFilter(addrs, func(msg *Message) []Address { return msg.Signers })
}

func (f *AddressSetFilter) Pass(msg *Message) bool {
	if len(f.allowed) == 0 {
		return true
	}
	for _, addr := range f.extract(msg) {
		if f.allowed[string(addr)] {
			return true
		}
	}
	return false
}

// FilteredHandler wraps a handler so that only messages passing every filter
// reach it. Dropped messages are counted but otherwise ignored.
func FilteredHandler(h Handler, filters ...MessageFilter) Handler {
	return HandlerFunc(func(msg *Message) error {
		for _, filter := range filters {
			if !filter.Pass(msg) {
				MessagesFiltered.Inc()
				return nil
			}
		}
		return h.ProcessMessage(msg)
	})
}
