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
	"context"

	"github.com/onflow/urts-dps/model/urts"
)

type fakeCache struct {
	single    func(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error)
	bulk      func(ctx context.Context, req urts.BulkDataRequest) ([]urts.DataResponse, error)
	callCount int
}

func (f *fakeCache) SingleRange(ctx context.Context, req urts.DataRequest) ([]urts.Packet, error) {
	f.callCount++
	return f.single(ctx, req)
}

func (f *fakeCache) BulkRange(ctx context.Context, req urts.BulkDataRequest) ([]urts.DataResponse, error) {
	f.callCount++
	return f.bulk(ctx, req)
}

type fakeInference struct {
	infer func(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error)
}

func (f *fakeInference) Infer(ctx context.Context, req urts.InferenceRequest) (urts.InferenceResponse, error) {
	return f.infer(ctx, req)
}

type fakePublisher struct {
	published []urts.ProbabilityPacket
}

func (f *fakePublisher) Publish(packet urts.ProbabilityPacket) {
	f.published = append(f.published, packet)
}
