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

import "time"

// ReconnectPolicy computes the wait before reconnect attempt n as
// min(InitialDelay * 2^n, MaxDelay). The attempt counter itself is never
// capped, only the resulting delay.
type ReconnectPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var DefaultReconnectPolicy = ReconnectPolicy{
	InitialDelay: time.Second,
	MaxDelay:     30 * time.Second,
}

func (p ReconnectPolicy) DelayFor(attempt uint) time.Duration {
	if p.InitialDelay <= 0 {
		return 0
	}

	max := p.MaxDelay
	if max <= 0 {
		max = time.Duration(1<<63 - 1)
	}

	// past 62 doublings the shift would wrap int64
	if attempt > 62 {
		return max
	}

	delay := p.InitialDelay << attempt
	if delay < 0 || delay>>attempt != p.InitialDelay || delay > max {
		return max
	}
	return delay
}
