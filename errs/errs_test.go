package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onflow/urts-dps/errs"
)

func TestRetryable(t *testing.T) {
	retryable := []error{
		errs.NewBackendError(3, "bad state"),
		errs.NewTimedOut("no reply"),
		errs.NewCommunicationError("disconnected"),
		errs.NewAlgorithmicFailure("solver diverged"),
	}
	for _, err := range retryable {
		assert.True(t, errs.Retryable(err), err.Error())
	}

	fatal := []error{
		errs.NewInvalidArgument("empty network code"),
		errs.NewNotSet("samplingRate"),
	}
	for _, err := range fatal {
		assert.False(t, errs.Retryable(err), err.Error())
	}
}

func TestErrorsAs(t *testing.T) {
	err := errs.NewBackendError(5, "algorithmic failure")

	var backend *errs.BackendError
	require := errors.As(err, &backend)
	assert.True(t, require)
	assert.Equal(t, 5, backend.Code)
}
