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
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/engine"
	"github.com/onflow/urts-dps/locator"
	"github.com/onflow/urts-dps/transport/incrementer"
	"github.com/onflow/urts-dps/transport/locate"
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
		flagSubscribeAddress  string
		flagPublishAddress    string
		flagLocatorAddress    string
		flagIncrementerAddress string
		flagRegion            string
		flagAlgorithm         string
		flagInboundCapacity   int
		flagOutboundCapacity  int
		flagTimeout           time.Duration
		flagLevel             string
	)

	pflag.StringVar(&flagSubscribeAddress, "subscribe-address", "", "address of the preliminary-origin bus to subscribe to")
	pflag.StringVar(&flagPublishAddress, "publish-address", "", "bind address for the refined-origin bus")
	pflag.StringVar(&flagLocatorAddress, "locator-address", "", "address of the remote location service")
	pflag.StringVar(&flagIncrementerAddress, "incrementer-address", "", "address of the identifier incrementer service")
	pflag.StringVarP(&flagRegion, "region", "r", "", "monitoring region this instance serves")
	pflag.StringVarP(&flagAlgorithm, "algorithm", "a", "", "algorithm tag stamped onto every refined origin")
	pflag.IntVar(&flagInboundCapacity, "inbound-capacity", 64, "bounded capacity of the subscribe-to-locate queue")
	pflag.IntVar(&flagOutboundCapacity, "outbound-capacity", 64, "bounded capacity of the locate-to-publish queue")
	pflag.DurationVar(&flagTimeout, "timeout", 10*time.Second, "request timeout for the locator and incrementer RPC clients")
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

	if flagRegion == "" {
		log.Error().Msg("region is required")
		return failure
	}

	cdc := codec.New()

	sub, err := publish.Subscribe(flagSubscribeAddress, cdc, log)
	if err != nil {
		log.Error().Err(err).Msg("could not subscribe to preliminary-origin bus")
		return failure
	}
	defer sub.Close()

	pub, err := publish.Bind(flagPublishAddress, cdc, log)
	if err != nil {
		log.Error().Err(err).Msg("could not bind refined-origin bus")
		return failure
	}
	defer pub.Close()

	locationClient, err := locate.Dial(flagLocatorAddress, cdc, log, flagTimeout)
	if err != nil {
		log.Error().Err(err).Msg("could not dial location service")
		return failure
	}
	defer locationClient.Close()

	identifierClient, err := incrementer.Dial(flagIncrementerAddress, cdc, log, flagTimeout)
	if err != nil {
		log.Error().Err(err).Msg("could not dial identifier incrementer")
		return failure
	}
	defer identifierClient.Close()

	cfg := locator.Config{
		Region:           flagRegion,
		AlgorithmName:    flagAlgorithm,
		InboundCapacity:  flagInboundCapacity,
		OutboundCapacity: flagOutboundCapacity,
	}
	orchestrator := locator.NewOrchestrator(log, cfg, cdc, sub, pub, locationClient, identifierClient)

	e := engine.New(log, "locator-orchestrator", sig)
	e = orchestrator.Register(e)

	err = e.Run()
	if err != nil {
		log.Error().Err(err).Msg("locator orchestrator stopped with error")
		return failure
	}
	return success
}
