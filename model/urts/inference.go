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

// InferenceRequest asks a detector to score one (1C) or three (3C) signals
// of equal length at a declared sampling rate.
type InferenceRequest struct {
	Identifier   int64             `cbor:"identifier"`
	SamplingRate float64           `cbor:"sampling_rate"`
	Signals      [][]float64       `cbor:"signals"`
	Strategy     InferenceStrategy `cbor:"strategy"`
}

// InferenceResponse is a detector's reply: a return code and, on success,
// a probability trace at the detector's own declared output sampling rate.
type InferenceResponse struct {
	Identifier    int64               `cbor:"identifier"`
	ReturnCode    InferenceReturnCode `cbor:"return_code"`
	SamplingRate  float64             `cbor:"sampling_rate"`
	StartTimeUS   int64               `cbor:"start_time_us"`
	Probabilities []float64           `cbor:"probabilities"`
}
