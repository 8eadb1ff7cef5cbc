package clierrors_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github/chapool/go-hwctl/internal/clierrors"
)

func TestCategoryOf(t *testing.T) {
	err := clierrors.New(clierrors.CategoryUnknownChain, "unknown chain %q", "Foocoin")
	assert.Equal(t, clierrors.CategoryUnknownChain, clierrors.CategoryOf(err))
	assert.Equal(t, `unknown chain "Foocoin"`, err.Error())

	wrapped := errors.Wrap(err, "looking up chain")
	assert.Equal(t, clierrors.CategoryUnknownChain, clierrors.CategoryOf(wrapped))

	assert.Equal(t, clierrors.Category(0), clierrors.CategoryOf(errors.New("plain")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, clierrors.ExitCode(nil))
	assert.Equal(t, 2, clierrors.ExitCode(clierrors.New(clierrors.CategoryUsage, "conflicting flags")))
	assert.Equal(t, 3, clierrors.ExitCode(clierrors.New(clierrors.CategoryMalformedInput, "bad path")))
	assert.Equal(t, 4, clierrors.ExitCode(clierrors.New(clierrors.CategoryUnknownUnit, "bad unit")))
	assert.Equal(t, 5, clierrors.ExitCode(clierrors.New(clierrors.CategoryDevice, "device said no")))
	assert.Equal(t, 6, clierrors.ExitCode(clierrors.New(clierrors.CategoryNodeUnavailable, "node down")))
	assert.Equal(t, 7, clierrors.ExitCode(clierrors.New(clierrors.CategoryFirmwareHeader, "bad magic")))
	assert.Equal(t, 1, clierrors.ExitCode(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := clierrors.Wrap(clierrors.CategoryNodeUnavailable, cause, "failed to reach node %s", "localhost:8545")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "localhost:8545")
}
