package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to save message", cause)

	require.Equal(t, "[INTERNAL] failed to save message: disk full", err.Error())
	require.ErrorIs(t, err, cause)
	require.Equal(t, "[INVALID_ARGUMENT] bad", InvalidArgument("bad").Error())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("prepare: %w", ModelUnavailable("Nenhum modelo disponível", nil))

	require.True(t, IsCode(wrapped, ErrCodeModelUnavailable))
	require.False(t, IsCode(wrapped, ErrCodeInternal))
	require.False(t, IsCode(errors.New("plain"), ErrCodeInternal))
	require.True(t, IsCode(Internal("failed", errors.New("plain")), ErrCodeInternal))
}
