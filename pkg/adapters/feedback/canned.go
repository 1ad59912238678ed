package feedback

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/digest/pkg/ports"
)

var (
	DefaultPositive = []string{
		"Excellent synthesis, very clear and complete",
		"Good work structuring the information",
		"The sources are relevant and well used",
	}
	DefaultNegative = []string{
		"The content could be more detailed",
		"Some information seems to be missing",
		"The style could be improved",
	}
)

// Canned picks a remark from a fixed pool depending on the verdict.
type Canned struct {
	positive []string
	negative []string

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.FeedbackCollector = (*Canned)(nil)

// Option configures Canned.
type Option func(*Canned)

// WithPools replaces the remark pools. Empty pools keep the defaults.
func WithPools(positive, negative []string) Option {
	return func(c *Canned) {
		if len(positive) > 0 {
			c.positive = positive
		}
		if len(negative) > 0 {
			c.negative = negative
		}
	}
}

// WithSeed makes the picks deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Canned) {
		c.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewCanned returns a collector over the default pools.
func NewCanned(opts ...Option) *Canned {
	c := &Canned{
		positive: DefaultPositive,
		negative: DefaultNegative,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canned) CollectFeedback(ctx context.Context, approved bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pool := c.negative
	if approved {
		pool = c.positive
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rng.IntN(len(pool))], nil
}
