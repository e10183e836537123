package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoutError_Error_IncludesCode(t *testing.T) {
	err := New(ErrCodeInvalidInput, "topK must be positive", nil)
	assert.Equal(t, "[ERR_101_INVALID_INPUT] topK must be positive", err.Error())
}

func TestScoutError_Unwrap_ReturnsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(ErrCodePersist, "persist failed", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestScoutError_Is_MatchesByCode(t *testing.T) {
	err := Newf(ErrCodeInvalidInput, "topK must be positive, got %d", -1)
	target := &ScoutError{Code: ErrCodeInvalidInput}

	assert.True(t, stderrors.Is(err, target))
	assert.False(t, stderrors.Is(err, &ScoutError{Code: ErrCodePersist}))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(ErrCodeFileRead, nil))
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := IOError("read failed", stderrors.New("permission denied"))
	outer := fmt.Errorf("indexing aborted: %w", inner)

	assert.True(t, HasCode(outer, ErrCodeFileRead))
	assert.False(t, HasCode(outer, ErrCodeStoreCorrupt))
}
