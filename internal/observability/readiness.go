package observability

import (
	"context"
	"fmt"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NamedCheck pairs a readiness checker with the dependency it probes.
type NamedCheck struct {
	Name    string
	Checker sharedobs.ReadinessChecker
}

// Readiness is ready when every check passes. Checks run in order and the
// first failure is reported.
type Readiness []NamedCheck

// CheckReadiness implements sharedobs.ReadinessChecker.
func (r Readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.Checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}
