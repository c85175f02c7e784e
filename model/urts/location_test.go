package urts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onflow/urts-dps/model/urts"
)

func TestValidateArrivalsEmpty(t *testing.T) {
	err := urts.ValidateArrivals(nil)
	assert.Error(t, err)
}

func TestValidateArrivalsDuplicatePhase(t *testing.T) {
	arrivals := []urts.Arrival{
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseP, ArrivalTimeUS: 100},
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseP, ArrivalTimeUS: 200},
	}
	err := urts.ValidateArrivals(arrivals)
	assert.Error(t, err)
}

func TestValidateArrivalsSBeforeP(t *testing.T) {
	arrivals := []urts.Arrival{
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseS, ArrivalTimeUS: 100},
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseP, ArrivalTimeUS: 200},
	}
	err := urts.ValidateArrivals(arrivals)
	assert.Error(t, err)
}

func TestValidateArrivalsOK(t *testing.T) {
	arrivals := []urts.Arrival{
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseP, ArrivalTimeUS: 100},
		{Network: "UU", Station: "WPUT", Phase: urts.PhaseS, ArrivalTimeUS: 200},
		{Network: "UU", Station: "MPU", Phase: urts.PhaseP, ArrivalTimeUS: 150},
	}
	err := urts.ValidateArrivals(arrivals)
	assert.NoError(t, err)
}

// locationRequestFixture reproduces the twelve-arrival scenario named in
// the boundary scenario table: a single (UU, WPUT, P, 1729851505.246174)
// arrival plus eleven others spanning a realistic station distribution.
func locationRequestFixture() urts.LocationRequest {
	base := int64(1729851505246174)
	stations := []string{"WPUT", "MPU", "SRU", "FSU", "TCU", "CTU"}
	arrivals := make([]urts.Arrival, 0, 12)
	for i, station := range stations {
		offset := int64(i) * 300000
		arrivals = append(arrivals,
			urts.Arrival{Network: "UU", Station: station, Phase: urts.PhaseP, ArrivalTimeUS: base + offset},
			urts.Arrival{Network: "UU", Station: station, Phase: urts.PhaseS, ArrivalTimeUS: base + offset + 500000},
		)
	}
	return urts.LocationRequest{
		Identifier:       1,
		LocationStrategy: urts.LocationStrategyGeneral,
		Arrivals:         arrivals,
	}
}

func TestLocationRequestFixtureValidates(t *testing.T) {
	req := locationRequestFixture()
	assert.Len(t, req.Arrivals, 12)
	assert.NoError(t, req.Validate())
}
