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

// SubscriptionRequest is the immutable description of one logical
// subscription: the stream type, the server-side address filters forwarded
// verbatim to the feed, and the client-side trade filter. Empty filter
// lists are normalized away.
type SubscriptionRequest struct {
	streamType  StreamType
	tradeFilter TradeFilter

	programs []Address
	pools    []Address
	tokens   []Address
	traders  []Address
	signers  []Address
}

type RequestOption = func(r *SubscriptionRequest)

func WithPrograms(addrs ...Address) RequestOption {
	return func(r *SubscriptionRequest) { r.programs = normalizeAddresses(addrs) }
}

func WithPools(addrs ...Address) RequestOption {
	return func(r *SubscriptionRequest) { r.pools = normalizeAddresses(addrs) }
}

func WithTokens(addrs ...Address) RequestOption {
	return func(r *SubscriptionRequest) { r.tokens = normalizeAddresses(addrs) }
}

func WithTraders(addrs ...Address) RequestOption {
	return func(r *SubscriptionRequest) { r.traders = normalizeAddresses(addrs) }
}

func WithSigners(addrs ...Address) RequestOption {
	return func(r *SubscriptionRequest) { r.signers = normalizeAddresses(addrs) }
}

func WithTradeFilter(f TradeFilter) RequestOption {
	return func(r *SubscriptionRequest) { r.tradeFilter = f }
}

func NewSubscriptionRequest(streamType StreamType, options ...RequestOption) (*SubscriptionRequest, error) {
	if !streamTypes[streamType] {
		return nil, NewErrInvalidArg("unknown stream type %q", streamType)
	}

	r := &SubscriptionRequest{
		streamType:  streamType,
		tradeFilter: TradeFilterAll,
	}
	for _, option := range options {
		option(r)
	}

	switch r.tradeFilter {
	case TradeFilterAll, TradeFilterBuys, TradeFilterSells:
	default:
		return nil, NewErrInvalidArg("unknown trade filter %q", r.tradeFilter)
	}

	return r, nil
}

func (r *SubscriptionRequest) StreamType() StreamType   { return r.streamType }
func (r *SubscriptionRequest) TradeFilter() TradeFilter { return r.tradeFilter }

func (r *SubscriptionRequest) Programs() []Address { return copyAddresses(r.programs) }
func (r *SubscriptionRequest) Pools() []Address    { return copyAddresses(r.pools) }
func (r *SubscriptionRequest) Tokens() []Address   { return copyAddresses(r.tokens) }
func (r *SubscriptionRequest) Traders() []Address  { return copyAddresses(r.traders) }
func (r *SubscriptionRequest) Signers() []Address  { return copyAddresses(r.signers) }

func normalizeAddresses(in []Address) (out []Address) {
	for _, addr := range in {
		if addr.IsEmpty() {
			continue
		}
		dup := make(Address, len(addr))
		copy(dup, addr)
		out = append(out, dup)
	}
	return out
}

func copyAddresses(in []Address) []Address {
	if in == nil {
		return nil
	}
	out := make([]Address, len(in))
	copy(out, in)
	return out
}
