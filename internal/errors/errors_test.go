package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeDerivesCategoryAndRetryable(t *testing.T) {
	cases := []struct {
		code      string
		category  Category
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, false},
		{ErrCodeStoreIO, CategoryIO, false},
		{ErrCodeStoreLocked, CategoryIO, true},
		{ErrCodeEmbeddingService, CategoryNetwork, true},
		{ErrCodeGeneratorService, CategoryNetwork, true},
		{ErrCodeEmptyInput, CategoryValidation, false},
		{ErrCodeInternal, CategoryInternal, false},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := New(tc.code, "boom", nil)
			assert.Equal(t, tc.category, err.Category)
			assert.Equal(t, tc.retryable, err.Retryable)
		})
	}
}

func TestEmptyInputIsFatal(t *testing.T) {
	err := EmptyInput("nothing to index")

	assert.True(t, IsFatal(err))
	assert.True(t, IsEmptyInput(err))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeStoreIO, cause)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeStoreIO, GetCode(err))
	assert.Equal(t, "disk full", err.Message)
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeStoreIO, nil))
}

func TestGetCodeThroughWrapping(t *testing.T) {
	inner := EmbeddingService("service down", nil)
	outer := fmt.Errorf("loading index: %w", inner)

	assert.Equal(t, ErrCodeEmbeddingService, GetCode(outer))
	assert.True(t, IsEmbeddingService(outer))
	assert.True(t, IsRetryable(outer))
}

func TestGetCodeOnPlainError(t *testing.T) {
	assert.Empty(t, GetCode(stderrors.New("plain")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestErrorStringIncludesCode(t *testing.T) {
	err := New(ErrCodeQueryEmpty, "query must not be blank", nil)
	assert.Equal(t, "[ERR_403_QUERY_EMPTY] query must not be blank", err.Error())
}

func TestWithDetail(t *testing.T) {
	err := StoreIO("write failed", nil).
		WithDetail("path", "/tmp/x.json").
		WithDetail("attempt", "2")

	assert.Equal(t, "/tmp/x.json", err.Details["path"])
	assert.Equal(t, "2", err.Details["attempt"])
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return EmbeddingService("transient", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return EmptyInput("nothing to index")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsEmptyInput(err))
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return EmbeddingService("still down", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial try plus two retries
	assert.True(t, IsEmbeddingService(err))
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, DefaultRetryConfig(), func() error {
		return EmbeddingService("down", nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
}
