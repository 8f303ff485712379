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

package main

import (
	"fmt"
	"io"

	"github.com/dexstream-io/dexstream"
)

// printHandler writes one line per received message. Deliberately plain:
// formatting is a property of this demo command, not of the library.
func printHandler(out io.Writer) dexstream.Handler {
	return dexstream.HandlerFunc(func(msg *dexstream.Message) error {
		_, err := fmt.Fprintln(out, formatMessage(msg))
		return err
	})
}

func formatMessage(msg *dexstream.Message) string {
	switch msg.Type {
	case dexstream.StreamTypeDexTrades:
		return fmt.Sprintf("[%s] slot=%d side=%s program=%s pool=%s trader=%s sig=%s",
			msg.Type, msg.Slot, msg.Side, msg.Program, msg.Pool, msg.Trader, msg.Signature)
	case dexstream.StreamTypeDexOrders, dexstream.StreamTypeDexPools:
		return fmt.Sprintf("[%s] slot=%d program=%s pool=%s sig=%s",
			msg.Type, msg.Slot, msg.Program, msg.Pool, msg.Signature)
	case dexstream.StreamTypeTransfers, dexstream.StreamTypeBalances:
		return fmt.Sprintf("[%s] slot=%d tokens=%s sig=%s",
			msg.Type, msg.Slot, formatAddresses(msg.Tokens), msg.Signature)
	}
	return fmt.Sprintf("[%s] slot=%d sig=%s", msg.Type, msg.Slot, msg.Signature)
}

func formatAddresses(addrs []dexstream.Address) string {
	if len(addrs) == 0 {
		return "-"
	}
	out := ""
	for i, addr := range addrs {
		if i > 0 {
			out += ","
		}
		out += addr.String()
	}
	return out
}
