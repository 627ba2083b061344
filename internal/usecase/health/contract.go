package health

import "context"

// Pinger checks store availability (cache, outlet database).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks provider availability (embedding, generation).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// PingCheck adapts a Pinger to Checker.
func PingCheck(p Pinger) Checker {
	return CheckFunc(p.Ping)
}
