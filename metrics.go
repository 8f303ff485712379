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
	"github.com/streamingfast/dmetrics"
)

var Metrics = dmetrics.NewSet(dmetrics.PrefixNameWith("dexstream"))

var MessagesReceived = Metrics.NewCounter("messages_received", "Number of messages received from the live stream")
var BytesReceived = Metrics.NewCounter("bytes_received", "Bytes received from the live stream")
var MessagesFiltered = Metrics.NewCounter("messages_filtered", "Number of messages dropped by client-side filters")
var ReconnectAttempts = Metrics.NewCounter("reconnect_attempts", "Number of reconnection attempts since process start")
var ActiveStreams = Metrics.NewGauge("active_streams", "Whether a live stream is currently established")
