package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeDuplicateSubmission, "attestor already voted")
		assert.True(t, HasCode(err, CodeDuplicateSubmission))
		assert.False(t, HasCode(err, CodeInvalidSignature))
	})

	t.Run("matches through wrapping layers", func(t *testing.T) {
		inner := New(CodeInsufficientStake, "stake below minimum")
		outer := fmt.Errorf("register attestor: %w", inner)
		assert.True(t, HasCode(outer, CodeInsufficientStake))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil in nil out", func(t *testing.T) {
		require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves the underlying error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "store unavailable")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeFutureTimestamp, CodeOf(New(CodeFutureTimestamp, "ts in future")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("untyped")))
}
