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

// Package directory abstracts the seismic-metadata catalog: it answers
// "which channels exist" and "which channels are live now", polling the
// catalog at a configurable cadence and notifying subscribers only when
// the snapshot actually changed. Only the poller is exposed — the
// original source's second, overlapping polling-service type is
// deliberately not carried over.
package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/onflow/urts-dps/errs"
	"github.com/onflow/urts-dps/model/urts"
)

// Observer is notified with a full snapshot whenever it changes.
type Observer func(channels []urts.ChannelData)

// Poller periodically queries the catalog and keeps the last good
// snapshot available even when the catalog becomes unreachable.
type Poller struct {
	log      zerolog.Logger
	interval time.Duration
	fetch    func(ctx context.Context) ([]urts.ChannelData, error)

	mu        sync.RWMutex
	snapshot  []urts.ChannelData
	observers []Observer

	done chan struct{}
}

// NewPoller creates a Poller backed by an already-connected pool.
func NewPoller(pool *pgxpool.Pool, interval time.Duration, log zerolog.Logger) *Poller {
	return newPoller(func(ctx context.Context) ([]urts.ChannelData, error) {
		return fetchChannels(ctx, pool)
	}, interval, log)
}

func newPoller(fetch func(ctx context.Context) ([]urts.ChannelData, error), interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		log:      log.With().Str("component", "channel_directory").Logger(),
		interval: interval,
		fetch:    fetch,
		done:     make(chan struct{}),
	}
}

// Observe registers a callback invoked after every snapshot change. Must
// be called before Run starts polling.
func (p *Poller) Observe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Snapshot returns the current full channel list.
func (p *Poller) Snapshot() []urts.ChannelData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]urts.ChannelData, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

// Live returns the subset of the current snapshot that is live at t.
func (p *Poller) Live(t int64) []urts.ChannelData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	live := make([]urts.ChannelData, 0, len(p.snapshot))
	for _, c := range p.snapshot {
		if c.LiveAt(t) {
			live = append(live, c)
		}
	}
	return live
}

// Run polls the catalog every interval until ctx is cancelled or Stop is
// called. A single unreachable-catalog poll is logged as a BackendError
// and the last good snapshot is left intact; Run keeps trying on the
// next tick rather than giving up.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.done:
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Stop ends the polling loop.
func (p *Poller) Stop() {
	close(p.done)
}

func (p *Poller) poll(ctx context.Context) {
	channels, err := p.fetch(ctx)
	if err != nil {
		p.log.Error().Err(errs.NewBackendError(0, "could not poll channel catalog: %v", err)).Msg("channel catalog poll failed, keeping last snapshot")
		return
	}

	p.mu.Lock()
	changed := !urts.SnapshotEqual(p.snapshot, channels)
	if changed {
		p.snapshot = channels
	}
	observers := append([]Observer(nil), p.observers...)
	p.mu.Unlock()

	if !changed {
		return
	}
	for _, observer := range observers {
		observer(channels)
	}
}

const selectChannelsSQL = `
SELECT network, station, channel, location,
       sampling_rate, latitude, longitude, elevation, dip, azimuth,
       on_date_us, off_date_us, load_date_us
FROM channel_data
`

func fetchChannels(ctx context.Context, pool *pgxpool.Pool) ([]urts.ChannelData, error) {
	rows, err := pool.Query(ctx, selectChannelsSQL)
	if err != nil {
		return nil, fmt.Errorf("could not query channel_data: %w", err)
	}
	defer rows.Close()

	var channels []urts.ChannelData
	for rows.Next() {
		var c urts.ChannelData
		err := rows.Scan(
			&c.Network, &c.Station, &c.Channel, &c.Location,
			&c.SamplingRate, &c.Latitude, &c.Longitude, &c.Elevation, &c.Dip, &c.Azimuth,
			&c.OnDateUS, &c.OffDateUS, &c.LoadDateUS,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan channel_data row: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read channel_data rows: %w", err)
	}
	return channels, nil
}
