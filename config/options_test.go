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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithModuleName(t *testing.T) {
	c := Config{ModuleName: "original"}

	WithModuleName("replaced")(&c)

	assert.Equal(t, "replaced", c.ModuleName)
}

func TestWithVerbose(t *testing.T) {
	c := Config{Verbose: false}

	WithVerbose(true)(&c)

	assert.True(t, c.Verbose)
}

func TestWithNThreads(t *testing.T) {
	c := Config{NThreads: 1}

	WithNThreads(16)(&c)

	assert.Equal(t, 16, c.NThreads)
}

func TestWithDatabaseCredentials(t *testing.T) {
	c := Config{}

	WithDatabaseCredentials("user", "pass")(&c)

	assert.Equal(t, "user", c.Database.ReadOnlyUser)
	assert.Equal(t, "pass", c.Database.ReadOnlyPassword)
}
