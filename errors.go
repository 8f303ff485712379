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
	"errors"
	"fmt"
)

var ErrShuttingDown = errors.New("shutting down")
var ErrAlreadyStarted = errors.New("supervisor already started")
var ErrReloadInFlight = errors.New("reconfigure already in flight")

type ErrInvalidArg struct {
	message string
}

func NewErrInvalidArg(m string, args ...interface{}) *ErrInvalidArg {
	return &ErrInvalidArg{
		message: fmt.Sprintf(m, args...),
	}
}

func (e *ErrInvalidArg) Error() string {
	return e.message
}
