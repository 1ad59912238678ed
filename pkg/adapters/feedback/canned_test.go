package feedback_test

import (
	"context"
	"testing"

	"github.com/aretw0/digest/pkg/adapters/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanned_PicksFromVerdictPool(t *testing.T) {
	c := feedback.NewCanned(feedback.WithSeed(7))

	for range 50 {
		pos, err := c.CollectFeedback(context.Background(), true)
		require.NoError(t, err)
		assert.Contains(t, feedback.DefaultPositive, pos)

		neg, err := c.CollectFeedback(context.Background(), false)
		require.NoError(t, err)
		assert.Contains(t, feedback.DefaultNegative, neg)
	}
}

func TestCanned_CustomPools(t *testing.T) {
	c := feedback.NewCanned(feedback.WithPools([]string{"great"}, nil))

	pos, err := c.CollectFeedback(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "great", pos)

	neg, err := c.CollectFeedback(context.Background(), false)
	require.NoError(t, err)
	assert.Contains(t, feedback.DefaultNegative, neg)
}

func TestCanned_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := feedback.NewCanned().CollectFeedback(ctx, true)
	assert.ErrorIs(t, err, context.Canceled)
}
