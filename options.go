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
	"time"

	"go.uber.org/zap"
)

type SupervisorOption = func(s *Supervisor)

func WithLogger(logger *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

func WithReconnectPolicy(policy ReconnectPolicy) SupervisorOption {
	return func(s *Supervisor) {
		s.policy = policy
	}
}

// WithReportInterval controls how often the running message tally is logged
// and reset. Zero disables the periodic report.
func WithReportInterval(every time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.reportEvery = every
	}
}
