package health

import "context"

// StorePinger checks storage availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
