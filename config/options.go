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

package config

// Option overrides a value Load already read from the INI file, applied
// in order after the file is parsed and before validation — the same
// "defaults, then options" sequencing service/mapper.New uses for its own
// Config. An option always wins over the value read from disk.
type Option func(*Config)

// WithModuleName overrides the module's own name, e.g. distinguishing two
// detector instances sharing one INI file.
func WithModuleName(name string) Option {
	return func(cfg *Config) {
		cfg.ModuleName = name
	}
}

// WithVerbose overrides the verbose-logging flag.
func WithVerbose(b bool) Option {
	return func(cfg *Config) {
		cfg.Verbose = b
	}
}

// WithNThreads overrides the scheduler's worker-thread count.
func WithNThreads(n int) Option {
	return func(cfg *Config) {
		cfg.NThreads = n
	}
}

// WithDatabaseCredentials overrides the catalog's read-only user and
// password, the override an operator reaches for instead of editing
// credentials into the file on disk.
func WithDatabaseCredentials(user, password string) Option {
	return func(cfg *Config) {
		cfg.Database.ReadOnlyUser = user
		cfg.Database.ReadOnlyPassword = password
	}
}
