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

package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/urts-dps/model/urts"
)

func TestPublishBroadcastsOnlyEmittedPhasesAndReturnsToQuery(t *testing.T) {
	group := threeComponentGroup()
	names := ThreeComponentNames{PPositive: "p", PNegative: "noise", SPositive: "s", SNegative: "noise"}
	s := NewState3C(group, names, "test-detector", inferenceConfig())
	s.Status = StatusPublish
	s.pending = map[urts.Phase]pending{
		urts.PhaseP: {packet: urts.ProbabilityPacket{Identity: urts.Identity{Station: "WPUT"}}, ok: true},
		urts.PhaseS: {ok: false},
	}

	pub := &fakePublisher{}
	tr := NewTransitions(nil, nil, pub, func() int64 { return 0 })

	err := tr.Publish(s)
	require.NoError(t, err)

	assert.Len(t, pub.published, 1)
	assert.Equal(t, "WPUT", pub.published[0].Station)
	assert.Equal(t, StatusQuery, s.Status)
	assert.Empty(t, s.pending)
}
