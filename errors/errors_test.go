package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(Wrap(ErrInputNotFound, "missing.bat"), "check the --input path")

	assert.True(t, Is(err, ErrInputNotFound))
	assert.Contains(t, FlattenHints(err), "check the --input path")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing input", ErrInputMissingArgument, KindInputMissingArgument},
		{"missing output", Wrap(ErrOutputMissingArgument, "flags"), KindOutputMissingArgument},
		{"not found", Wrapf(ErrInputNotFound, "path %s", "a.sh"), KindInputNotFound},
		{"read failure", Wrap(ErrReadFailure, "permission denied"), KindReadFailure},
		{"diagnostics", ErrCompilationDiagnostic, KindCompilationDiagnostic},
		{"plain error", New("boom"), KindUnexpectedFailure},
		{"marked unexpected", NewUnexpected(New("boom"), "generate"), KindUnexpectedFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewUnexpected(t *testing.T) {
	assert.Nil(t, NewUnexpected(nil, "ignored"))

	cause := fmt.Errorf("disk full: %w", fs.ErrClosed)
	err := NewUnexpected(cause, "write emitted source")
	require.Error(t, err)

	assert.True(t, Is(err, ErrUnexpectedFailure))
	assert.True(t, Is(err, fs.ErrClosed), "original cause should stay reachable")
	assert.Equal(t, "write emitted source: disk full: file already closed", err.Error())
}

func TestIsArgumentError(t *testing.T) {
	assert.True(t, IsArgumentError(ErrInputMissingArgument))
	assert.True(t, IsArgumentError(Wrap(ErrOutputMissingArgument, "ctx")))
	assert.False(t, IsArgumentError(ErrInputNotFound))
	assert.False(t, IsArgumentError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(Wrap(ErrInputNotFound, "x")))
	assert.False(t, IsNotFoundError(New("not found")))
	assert.False(t, IsNotFoundError(nil))
}
