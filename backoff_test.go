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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectPolicyDelayFor(t *testing.T) {
	policy := ReconnectPolicy{
		InitialDelay: 1000 * time.Millisecond,
		MaxDelay:     30000 * time.Millisecond,
	}

	expected := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		16000 * time.Millisecond,
		30000 * time.Millisecond,
	}
	for attempt, delay := range expected {
		assert.Equal(t, delay, policy.DelayFor(uint(attempt)), "attempt %d", attempt)
	}
}

func TestReconnectPolicyNonDecreasing(t *testing.T) {
	policy := ReconnectPolicy{InitialDelay: 137 * time.Millisecond, MaxDelay: 11 * time.Second}

	prev := time.Duration(0)
	for attempt := uint(0); attempt < 128; attempt++ {
		delay := policy.DelayFor(attempt)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, policy.MaxDelay, "attempt %d", attempt)
		prev = delay
	}
}

func TestReconnectPolicyLargeAttemptDoesNotOverflow(t *testing.T) {
	policy := ReconnectPolicy{InitialDelay: time.Second, MaxDelay: 30 * time.Second}

	assert.Equal(t, 30*time.Second, policy.DelayFor(62))
	assert.Equal(t, 30*time.Second, policy.DelayFor(63))
	assert.Equal(t, 30*time.Second, policy.DelayFor(1<<20))
}

func TestReconnectPolicyMaxBelowInitial(t *testing.T) {
	policy := ReconnectPolicy{InitialDelay: 5 * time.Second, MaxDelay: time.Second}

	assert.Equal(t, time.Second, policy.DelayFor(0))
	assert.Equal(t, time.Second, policy.DelayFor(3))
}

func TestReconnectPolicyZeroInitial(t *testing.T) {
	policy := ReconnectPolicy{}
	assert.Equal(t, time.Duration(0), policy.DelayFor(0))
	assert.Equal(t, time.Duration(0), policy.DelayFor(10))
}
