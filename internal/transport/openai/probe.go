package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// probeTTL bounds how often /health reaches the provider.
const probeTTL = 30 * time.Second

// availabilityProbe remembers the last ListModels outcome for probeTTL.
type availabilityProbe struct {
	client *openai.Client
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	checkedAt time.Time
	lastErr   error
}

func newProbe(client *openai.Client) *availabilityProbe {
	return &availabilityProbe{client: client, ttl: probeTTL, now: time.Now}
}

// check returns the cached outcome while it is fresh, otherwise lists models.
func (p *availabilityProbe) check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checkedAt.IsZero() && p.now().Sub(p.checkedAt) < p.ttl {
		return p.lastErr
	}

	_, err := p.client.ListModels(ctx)
	if ctx.Err() != nil {
		// A caller that gave up says nothing about the provider.
		return fmt.Errorf("list models: %w", ctx.Err())
	}
	if err != nil {
		err = fmt.Errorf("list models: %w", err)
	}
	p.checkedAt, p.lastErr = p.now(), err
	return err
}
