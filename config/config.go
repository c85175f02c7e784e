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

// Package config reads a module's single initialization file and turns it
// into the typed settings every component constructor expects. Grouped
// option names (database_address, packet_cache_service_name, ...) live as
// INI sections (`[database]`, `[packet_cache]`, ...); scalar, ungrouped
// options stay at the top level of the file. Unknown keys are ignored.
// Missing required keys fail Load with a clear error rather than starting
// a module half-configured.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"

	"github.com/onflow/urts-dps/errs"
)

// DatabaseConfig is the channel-directory catalog connection (component A).
type DatabaseConfig struct {
	Address          string `validate:"required"`
	Port             int    `validate:"required,gt=0"`
	Name             string `validate:"required"`
	ReadOnlyUser     string
	ReadOnlyPassword string
	PollerInterval   time.Duration `validate:"required,gt=0"`
}

// DSN builds the connection string pgxpool.New accepts. The password is
// deliberately the only field this method's caller must keep out of any
// log line: config itself never logs a DatabaseConfig.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		d.ReadOnlyUser, d.ReadOnlyPassword, d.Address, d.Port, d.Name)
}

// ServiceConfig names a remote RPC collaborator's service name and dial
// address, the shape repeated by the packet cache and every detector.
type ServiceConfig struct {
	ServiceName    string `validate:"required"`
	ServiceAddress string `validate:"required"`
}

// PacketCacheConfig is the waveform cache client's settings (component B).
type PacketCacheConfig struct {
	ServiceConfig
	RequestTimeout time.Duration `validate:"required,gt=0"`
}

// BroadcastConfig is the probability-packet publisher's bind settings
// (component E).
type BroadcastConfig struct {
	Name          string `validate:"required"`
	Address       string `validate:"required"`
	HighWaterMark int    `validate:"gte=0"`
}

// Config is the full set of recognized options for one module instance,
// per spec.md §6's configuration-surface list.
type Config struct {
	ModuleName       string `validate:"required"`
	Verbose          bool
	LogFileDirectory string

	Database DatabaseConfig

	PacketCache PacketCacheConfig

	P3CDetector ServiceConfig
	S3CDetector ServiceConfig
	P1CDetector ServiceConfig

	RunP3CDetector bool
	RunS3CDetector bool
	RunP1CDetector bool

	InferenceRequestTimeout time.Duration `validate:"required,gt=0"`
	MaximumSignalLatencyS   float64       `validate:"gt=0"`
	GapTolerance            int           `validate:"gte=0"`
	DataQueryWaitPercentage float64       `validate:"gte=0,lte=1"`

	ActiveNetworks     []string `validate:"required,min=1"`
	ValidSamplingRates []float64

	NThreads int `validate:"required,gt=0"`

	ProbabilityPacketBroadcast BroadcastConfig
}

// DefaultConfig holds the values every field takes unless the file or an
// Option overrides them.
var DefaultConfig = Config{
	Verbose:                 false,
	GapTolerance:            0,
	DataQueryWaitPercentage: 0.5,
	NThreads:                1,
}

var validate = validator.New()

// Load reads path as an INI file, fills a Config starting from
// DefaultConfig, applies every Option in order, validates the result, and
// returns it. Environment variables override file-supplied database
// credentials, never the other way around, matching spec.md §6's
// "explicit config overriding" rule read in the direction that lets an
// operator force a credential at deploy time without editing the file on
// disk.
func Load(path string, opts ...Option) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config file %q: %w", path, err)
	}

	cfg := DefaultConfig

	top := file.Section("")
	cfg.ModuleName = top.Key("module_name").String()
	cfg.Verbose = top.Key("verbose").MustBool(cfg.Verbose)
	cfg.LogFileDirectory = top.Key("log_file_directory").String()
	cfg.InferenceRequestTimeout = time.Duration(top.Key("inference_request_timeout_ms").MustInt64(0)) * time.Millisecond
	cfg.MaximumSignalLatencyS = top.Key("maximum_signal_latency_s").MustFloat64(0)
	cfg.GapTolerance = top.Key("gap_tolerance").MustInt(cfg.GapTolerance)
	cfg.DataQueryWaitPercentage = top.Key("data_query_wait_percentage").MustFloat64(cfg.DataQueryWaitPercentage)
	cfg.ActiveNetworks = splitList(top.Key("active_networks").String())
	cfg.ValidSamplingRates = splitFloats(top.Key("valid_sampling_rates").String())
	cfg.RunP3CDetector = top.Key("run_p3c_detector").MustBool(false)
	cfg.RunS3CDetector = top.Key("run_s3c_detector").MustBool(false)
	cfg.RunP1CDetector = top.Key("run_p1c_detector").MustBool(false)
	cfg.NThreads = top.Key("n_threads").MustInt(cfg.NThreads)

	db := file.Section("database")
	cfg.Database.Address = db.Key("address").String()
	cfg.Database.Port = db.Key("port").MustInt(0)
	cfg.Database.Name = db.Key("name").String()
	cfg.Database.ReadOnlyUser = db.Key("read_only_user").String()
	cfg.Database.ReadOnlyPassword = db.Key("read_only_password").String()
	cfg.Database.PollerInterval = time.Duration(db.Key("poller_interval").MustInt64(60)) * time.Second

	if user, ok := os.LookupEnv("URTS_AQMS_RDONLY_USER"); ok {
		cfg.Database.ReadOnlyUser = user
	}
	if password, ok := os.LookupEnv("URTS_AQMS_RDONLY_PASSWORD"); ok {
		cfg.Database.ReadOnlyPassword = password
	}
	if name, ok := os.LookupEnv("URTS_AQMS_DATABASE_NAME"); ok {
		cfg.Database.Name = name
	}

	pc := file.Section("packet_cache")
	cfg.PacketCache.ServiceName = pc.Key("service_name").String()
	cfg.PacketCache.ServiceAddress = pc.Key("service_address").String()
	cfg.PacketCache.RequestTimeout = time.Duration(pc.Key("request_timeout_ms").MustInt64(0)) * time.Millisecond

	cfg.P3CDetector = loadServiceConfig(file.Section("p3c_detector"))
	cfg.S3CDetector = loadServiceConfig(file.Section("s3c_detector"))
	cfg.P1CDetector = loadServiceConfig(file.Section("p1c_detector"))

	bc := file.Section("probability_packet_broadcast")
	cfg.ProbabilityPacketBroadcast.Name = bc.Key("name").String()
	cfg.ProbabilityPacketBroadcast.Address = bc.Key("address").String()
	cfg.ProbabilityPacketBroadcast.HighWaterMark = bc.Key("high_water_mark").MustInt(0)

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errs.NewInvalidArgument("config %q missing or invalid required keys: %v", path, err)
	}

	return &cfg, nil
}

func loadServiceConfig(sec *ini.Section) ServiceConfig {
	return ServiceConfig{
		ServiceName:    sec.Key("service_name").String(),
		ServiceAddress: sec.Key("service_address").String(),
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func splitFloats(raw string) []float64 {
	fields := splitList(raw)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		var v float64
		if _, err := fmt.Sscanf(f, "%g", &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
