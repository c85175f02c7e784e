// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package errs defines the small set of error kinds shared by every
// component that talks to a remote collaborator (the channel directory, the
// waveform cache, the inference services, the locator). Every kind is a
// distinct type so that callers can tell them apart with errors.As instead
// of string matching, while the messages themselves still flow through the
// normal fmt.Errorf/%w wrapping chain.
package errs

import "fmt"

// InvalidArgument means a call's input violated a documented precondition.
type InvalidArgument struct {
	Msg string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Msg)
}

// NewInvalidArgument builds an InvalidArgument with a formatted message.
func NewInvalidArgument(format string, args ...interface{}) error {
	return &InvalidArgument{Msg: fmt.Sprintf(format, args...)}
}

// NotSet means a required attribute was read before being set.
type NotSet struct {
	Field string
}

func (e *NotSet) Error() string {
	return fmt.Sprintf("field not set: %s", e.Field)
}

// NewNotSet builds a NotSet error for the given field name.
func NewNotSet(field string) error {
	return &NotSet{Field: field}
}

// BackendError means the cache, directory, or inference service returned a
// non-success code.
type BackendError struct {
	Code int
	Msg  string
}

func (e *BackendError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend error (code: %d)", e.Code)
	}
	return fmt.Sprintf("backend error (code: %d): %s", e.Code, e.Msg)
}

// NewBackendError builds a BackendError for the given return code.
func NewBackendError(code int, format string, args ...interface{}) error {
	return &BackendError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// TimedOut means an RPC did not reply within its bounded wait.
type TimedOut struct {
	Msg string
}

func (e *TimedOut) Error() string {
	return fmt.Sprintf("timed out: %s", e.Msg)
}

// NewTimedOut builds a TimedOut error with a formatted message.
func NewTimedOut(format string, args ...interface{}) error {
	return &TimedOut{Msg: fmt.Sprintf(format, args...)}
}

// CommunicationError means a transport-level failure occurred (disconnect,
// malformed frame, failure envelope).
type CommunicationError struct {
	Msg string
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication error: %s", e.Msg)
}

// NewCommunicationError builds a CommunicationError with a formatted message.
func NewCommunicationError(format string, args ...interface{}) error {
	return &CommunicationError{Msg: fmt.Sprintf(format, args...)}
}

// AlgorithmicFailure means the remote service reported an internal failure
// while processing an otherwise well-formed request.
type AlgorithmicFailure struct {
	Msg string
}

func (e *AlgorithmicFailure) Error() string {
	return fmt.Sprintf("algorithmic failure: %s", e.Msg)
}

// NewAlgorithmicFailure builds an AlgorithmicFailure with a formatted message.
func NewAlgorithmicFailure(format string, args ...interface{}) error {
	return &AlgorithmicFailure{Msg: fmt.Sprintf(format, args...)}
}

// Retryable reports whether an error is one of the kinds that the sensor
// state machine treats as "go back to Query and keep pacing" rather than a
// programming error that should surface loudly.
func Retryable(err error) bool {
	switch err.(type) {
	case *BackendError, *TimedOut, *CommunicationError, *AlgorithmicFailure:
		return true
	default:
		return false
	}
}
