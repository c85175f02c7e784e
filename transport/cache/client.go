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

// Package cache is a thin client for the waveform cache: single-channel
// and bulk range queries over the shared request/reply transport, in the
// same spirit as teacher's api/dps client wraps a generated RPC stub with
// typed methods around a single connection.
package cache

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

// Client queries the waveform cache. It owns one transport.Client and
// never retries internally — pacing and retry are the caller's job.
type Client struct {
	log     zerolog.Logger
	conn    *transport.Client
	timeout time.Duration
}

// Dial connects to the waveform cache at address.
func Dial(address string, cdc *codec.Codec, log zerolog.Logger, timeout time.Duration) (*Client, error) {
	conn, err := transport.Dial(address, cdc, log)
	if err != nil {
		return nil, fmt.Errorf("could not dial waveform cache: %w", err)
	}
	c := Client{
		log:     log.With().Str("component", "cache_client").Logger(),
		conn:    conn,
		timeout: timeout,
	}
	return &c, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SingleRange fetches every packet of one channel within
// [req.StartTimeS, req.EndTimeS). A no-such-sensor reply is not an error:
// it surfaces as an empty packet list.
func (c *Client) SingleRange(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp urts.DataResponse
	err := c.conn.Request(ctx, req.Identifier, "DataRequest", req, "DataResponse", &resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.NewTimedOut("waveform cache request %d timed out", req.Identifier)
		}
		return nil, errs.NewCommunicationError("waveform cache request %d failed: %v", req.Identifier, err)
	}

	switch resp.ReturnCode {
	case urts.DataSuccess, urts.DataNoSensor:
		return resp.Packets, nil
	default:
		return nil, errs.NewBackendError(int(resp.ReturnCode), "waveform cache returned %s for request %d", resp.ReturnCode, req.Identifier)
	}
}

// BulkRange fetches packets for several channels in one round trip. The
// returned slice is ordered to match req.Requests; a channel with no
// sensor contributes an empty packet list rather than an error.
func (c *Client) BulkRange(ctx context.Context, req urts.BulkDataRequest) ([]urts.DataResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp urts.BulkDataResponse
	err := c.conn.Request(ctx, req.Identifier, "BulkDataRequest", req, "BulkDataResponse", &resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.NewTimedOut("bulk waveform cache request %d timed out", req.Identifier)
		}
		return nil, errs.NewCommunicationError("bulk waveform cache request %d failed: %v", req.Identifier, err)
	}

	switch resp.ReturnCode {
	case urts.DataSuccess, urts.DataNoSensor:
		return resp.Responses, nil
	default:
		return nil, errs.NewBackendError(int(resp.ReturnCode), "waveform cache returned %s for bulk request %d", resp.ReturnCode, req.Identifier)
	}
}
