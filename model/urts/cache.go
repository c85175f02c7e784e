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

package urts

// DataRequest asks the waveform cache for every packet of one channel that
// falls within [StartTimeS, EndTimeS).
type DataRequest struct {
	Identifier int64    `cbor:"identifier"`
	Identity   Identity `cbor:"identity"`
	StartTimeS float64  `cbor:"start_time_s"`
	EndTimeS   float64  `cbor:"end_time_s"`
}

// DataResponse is the cache's reply to a single DataRequest, or one element
// of a BulkDataResponse demultiplexed by its Identifier.
type DataResponse struct {
	Identifier int64          `cbor:"identifier"`
	ReturnCode DataReturnCode `cbor:"return_code"`
	Packets    []Packet       `cbor:"packets"`
}

// BulkDataRequest asks the waveform cache for packets of several channels
// at once, each tagged with its own identifier so the response can be
// demultiplexed.
type BulkDataRequest struct {
	Identifier int64         `cbor:"identifier"`
	Requests   []DataRequest `cbor:"requests"`
}

// BulkDataResponse is the cache's reply to a BulkDataRequest.
type BulkDataResponse struct {
	Identifier int64          `cbor:"identifier"`
	ReturnCode DataReturnCode `cbor:"return_code"`
	Responses  []DataResponse `cbor:"responses"`
}

// Failure replaces any RPC reply when the remote side could not produce a
// typed response. The transport layer converts it to a CommunicationError.
type Failure struct {
	Details string `cbor:"details"`
}
