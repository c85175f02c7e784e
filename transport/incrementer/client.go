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

// Package incrementer is a thin client for the identifier incrementer
// service: a monotone counter reachable over the wire, handing out blocks
// of fresh, never-reused integers for origins and arrivals. It shares the
// same request/reply envelope shape as transport/cache and
// transport/inference (§4.I).
package incrementer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/errs"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/transport"
)

// Client draws fresh identifiers from a named counter on a remote
// incrementer service.
type Client struct {
	log     zerolog.Logger
	conn    *transport.Client
	timeout time.Duration

	seq int64
}

// Dial connects to an incrementer service at address.
func Dial(address string, cdc *codec.Codec, log zerolog.Logger, timeout time.Duration) (*Client, error) {
	conn, err := transport.Dial(address, cdc, log)
	if err != nil {
		return nil, fmt.Errorf("could not dial incrementer service: %w", err)
	}
	c := Client{
		log:     log.With().Str("component", "incrementer_client").Logger(),
		conn:    conn,
		timeout: timeout,
	}
	return &c, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Next draws count consecutive fresh identifiers from counter and returns
// the first one; the caller owns [first, first+count).
func (c *Client) Next(ctx context.Context, counter string, count int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := urts.IncrementRequest{
		Identifier: atomic.AddInt64(&c.seq, 1),
		Counter:    counter,
		Count:      count,
	}

	var resp urts.IncrementResponse
	err := c.conn.Request(ctx, req.Identifier, "IncrementRequest", req, "IncrementResponse", &resp)
	if err != nil {
		if ctx.Err() != nil {
			return 0, errs.NewTimedOut("increment request for %q timed out", counter)
		}
		return 0, errs.NewCommunicationError("increment request for %q failed: %v", counter, err)
	}

	switch resp.ReturnCode {
	case urts.IncrementSuccess:
		return resp.FirstValue, nil
	case urts.IncrementInvalidRequest:
		return 0, errs.NewInvalidArgument("incrementer service rejected request for %q", counter)
	default:
		return 0, errs.NewAlgorithmicFailure("incrementer service returned %s for %q", resp.ReturnCode, counter)
	}
}
