package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesClassificationThroughChain(t *testing.T) {
	inner := Retriable("redis down")
	wrapped := fmt.Errorf("step failed: %w", inner)

	e := Wrap(wrapped)
	require.NotNil(t, e)
	assert.True(t, e.Retryable)

	e = Wrap(fmt.Errorf("step failed: %w", NonRetriable("bad payload")))
	require.NotNil(t, e)
	assert.False(t, e.Retryable)
}

func TestWrapPlainError(t *testing.T) {
	e := Wrap(errors.New("boom"))
	require.NotNil(t, e)
	// 未分类错误缺省不可重试
	assert.False(t, e.Retryable)
	assert.Equal(t, "boom", e.Message)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.Nil(t, UnWrapResponse(nil))
}
