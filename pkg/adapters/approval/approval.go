package approval

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/digest/pkg/ports"
)

// DefaultProbability is the approval chance of the simulated reviewer.
const DefaultProbability = 0.9

// Static always answers the same verdict.
type Static bool

var _ ports.Approver = Static(true)

func (s Static) Approve(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(s), nil
}

// RandomApprover approves with a fixed probability.
type RandomApprover struct {
	p   float64
	mu  sync.Mutex
	rng *rand.Rand
}

// Random returns an approver that accepts with probability p, clamped to [0,1].
func Random(p float64) *RandomApprover {
	return RandomSeeded(p, rand.Uint64())
}

// RandomSeeded is Random with a deterministic source.
func RandomSeeded(p float64, seed uint64) *RandomApprover {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &RandomApprover{p: p, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Probability returns the configured approval chance.
func (r *RandomApprover) Probability() float64 {
	return r.p
}

func (r *RandomApprover) Approve(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.p, nil
}
