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

// Package locate is a thin client for a remote locator service: it presents
// a set of arrivals and gets back a refined origin estimate. It shares the
// same request/reply envelope shape as transport/cache and
// transport/inference (§4.I). Named locate, not locator, so it can sit
// alongside the top-level locator package that uses it without a name
// collision.
package locate

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

// Client queries a remote locator service.
type Client struct {
	log     zerolog.Logger
	conn    *transport.Client
	timeout time.Duration
}

// Dial connects to a locator service at address.
func Dial(address string, cdc *codec.Codec, log zerolog.Logger, timeout time.Duration) (*Client, error) {
	conn, err := transport.Dial(address, cdc, log)
	if err != nil {
		return nil, fmt.Errorf("could not dial locator service: %w", err)
	}
	c := Client{
		log:     log.With().Str("component", "locator_client").Logger(),
		conn:    conn,
		timeout: timeout,
	}
	return &c, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Locate presents req and returns the locator service's refined origin.
func (c *Client) Locate(ctx context.Context, req urts.LocationRequest) (urts.LocationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp urts.LocationResponse
	err := c.conn.Request(ctx, req.Identifier, "LocationRequest", req, "LocationResponse", &resp)
	if err != nil {
		if ctx.Err() != nil {
			return urts.LocationResponse{}, errs.NewTimedOut("location request %d timed out", req.Identifier)
		}
		return urts.LocationResponse{}, errs.NewCommunicationError("location request %d failed: %v", req.Identifier, err)
	}

	switch resp.ReturnCode {
	case urts.LocationSuccess:
		return resp, nil
	case urts.LocationInvalidRequest:
		return urts.LocationResponse{}, errs.NewInvalidArgument("locator service rejected request %d", req.Identifier)
	default:
		return urts.LocationResponse{}, errs.NewAlgorithmicFailure("locator service returned %s for request %d", resp.ReturnCode, req.Identifier)
	}
}
