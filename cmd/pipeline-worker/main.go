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

package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/config"
	"github.com/onflow/urts-dps/directory"
	"github.com/onflow/urts-dps/engine"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/pipeline/scheduler"
	"github.com/onflow/urts-dps/transport/cache"
	"github.com/onflow/urts-dps/transport/publish"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var (
		flagConfig string
		flagLevel  string
	)
	pflag.StringVarP(&flagConfig, "config", "c", "", "module initialization file")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.Parse()

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		log.Error().Str("config", flagConfig).Err(err).Msg("could not load configuration")
		return failure
	}
	log = log.With().Str("module", cfg.ModuleName).Logger()
	if cfg.Verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := pgxpool.New(connectCtx, cfg.Database.DSN())
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("could not connect to channel directory catalog")
		return failure
	}
	defer dbPool.Close()

	cdc := codec.New()

	cacheClient, err := cache.Dial(cfg.PacketCache.ServiceAddress, cdc, log, cfg.PacketCache.RequestTimeout)
	if err != nil {
		log.Error().Err(err).Msg("could not dial waveform cache")
		return failure
	}
	defer cacheClient.Close()

	bus, err := publish.Bind(cfg.ProbabilityPacketBroadcast.Address, cdc, log)
	if err != nil {
		log.Error().Err(err).Msg("could not bind probability bus")
		return failure
	}
	defer bus.Close()

	threeComponent, single, err := dialDetectors(cfg, cdc, log, cacheClient, bus)
	if err != nil {
		log.Error().Err(err).Msg("could not dial detector services")
		return failure
	}
	defer threeComponent.close()
	defer single.close()

	poller := directory.NewPoller(dbPool, cfg.Database.PollerInterval, log)

	workerPool := scheduler.NewPool(log, cfg.NThreads)
	tracker := newAssignmentTracker(workerPool)
	poller.Observe(func(channels []urts.ChannelData) {
		groups, singles := scheduler.GroupChannels(liveNetworks(channels, cfg.ActiveNetworks))
		tracker.reconcile(groups, singles, threeComponent, single, cfg.ModuleName)
	})

	e := engine.New(log, cfg.ModuleName, sig)
	e = e.Component("channel-directory", func() error { return poller.Run(context.Background()) }, poller.Stop)
	e = workerPool.Register(e)

	err = e.Run()
	if err != nil {
		log.Error().Err(err).Msg("pipeline worker stopped with error")
		return failure
	}
	return success
}

// liveNetworks filters a channel snapshot down to the configured active
// networks. An empty active list means "every network".
func liveNetworks(channels []urts.ChannelData, active []string) []urts.ChannelData {
	if len(active) == 0 {
		return channels
	}
	wanted := make(map[string]struct{}, len(active))
	for _, n := range active {
		wanted[n] = struct{}{}
	}
	out := make([]urts.ChannelData, 0, len(channels))
	for _, c := range channels {
		if _, ok := wanted[c.Network]; ok {
			out = append(out, c)
		}
	}
	return out
}
