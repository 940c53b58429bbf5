package ports

import "context"

// HealthChecker probes one backing dependency; a non-nil error means unhealthy.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
