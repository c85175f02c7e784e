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

import (
	"github.com/go-playground/validator/v10"

	"github.com/onflow/urts-dps/errs"
)

// validate checks the struct tags on this package's wire types (currently
// just Arrival's non-empty network/station), the same validator instance
// the rosetta API's request validation uses.
var validate = validator.New()

var errEmptyArrivals = errs.NewInvalidArgument("location request must have at least one arrival")

func errDuplicatePhase(station string, phase Phase) error {
	return errs.NewInvalidArgument("station %s already has a %s arrival", station, phase)
}

func errSBeforeP(station string) error {
	return errs.NewInvalidArgument("station %s has an S arrival before its P arrival", station)
}
