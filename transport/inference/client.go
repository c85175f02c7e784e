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

// Package inference is a thin client for a remote phase detector: it
// presents a fixed-length signal and gets back a probability trace. It
// shares the same request/reply envelope shape as transport/cache (§4.I).
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/errs"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/transport"
)

// Client queries a remote detector. Presenting correctly-sized inputs and
// slicing correctly-sized outputs is the sensor state machine's job, not
// the client's: the client only ships bytes and maps return codes.
type Client struct {
	log     zerolog.Logger
	conn    *transport.Client
	timeout time.Duration
}

// Dial connects to a detector service at address.
func Dial(address string, cdc *codec.Codec, log zerolog.Logger, timeout time.Duration) (*Client, error) {
	conn, err := transport.Dial(address, cdc, log)
	if err != nil {
		return nil, fmt.Errorf("could not dial inference service: %w", err)
	}
	c := Client{
		log:     log.With().Str("component", "inference_client").Logger(),
		conn:    conn,
		timeout: timeout,
	}
	return &c, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Infer presents req and returns the detector's probability trace.
func (c *Client) Infer(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp urts.InferenceResponse
	err := c.conn.Request(ctx, req.Identifier, "InferenceRequest", req, "InferenceResponse", &resp)
	if err != nil {
		if ctx.Err() != nil {
			return urts.InferenceResponse{}, errs.NewTimedOut("inference request %d timed out", req.Identifier)
		}
		return urts.InferenceResponse{}, errs.NewCommunicationError("inference request %d failed: %v", req.Identifier, err)
	}

	switch resp.ReturnCode {
	case urts.InferenceSuccess:
		return resp, nil
	case urts.InferenceInvalidRequest:
		return urts.InferenceResponse{}, errs.NewInvalidArgument("inference service rejected request %d", req.Identifier)
	default:
		return urts.InferenceResponse{}, errs.NewAlgorithmicFailure("inference service returned %s for request %d", resp.ReturnCode, req.Identifier)
	}
}
