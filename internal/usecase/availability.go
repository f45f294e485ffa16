package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/platewise/backend/internal/domain"
)

// Availability is the outcome of one live catalog check. Advisory only;
// re-checked per request, never cached.
type Availability struct {
	Available     bool
	FallbackModel string // first listed fallback candidate when preferred is missing
	Reason        string // human-readable explanation when degraded
}

// AvailabilityChecker decides whether the preferred vision model is usable
// right now, consulting the provider catalog exactly once per call.
type AvailabilityChecker struct {
	provider domain.ModelProvider
}

// NewAvailabilityChecker creates an availability checker.
func NewAvailabilityChecker(provider domain.ModelProvider) *AvailabilityChecker {
	return &AvailabilityChecker{provider: provider}
}

// Check lists the provider catalog once and resolves the preferred model or
// the first listed fallback candidate. Auth, rate-limit, and transport
// failures are reported distinctly so callers can decide whether a retry is
// meaningful; no retry happens here.
func (c *AvailabilityChecker) Check(ctx context.Context, preferred string, fallbacks []string) (*Availability, error) {
	models, err := c.provider.ListModels(ctx)
	if err != nil {
		return nil, classifyAvailabilityError(err)
	}

	listed := make(map[string]bool, len(models))
	for _, id := range models {
		listed[id] = true
	}

	if listed[preferred] {
		return &Availability{Available: true}, nil
	}

	for _, candidate := range fallbacks {
		if listed[candidate] {
			log.Printf("[MODEL] preferred model %q not listed, candidate %q is", preferred, candidate)
			return &Availability{
				Available:     false,
				FallbackModel: candidate,
				Reason:        fmt.Sprintf("model %q is not available; %q is", preferred, candidate),
			}, nil
		}
	}

	return &Availability{
		Available: false,
		Reason:    fmt.Sprintf("model %q is not available and no fallback candidate is listed", preferred),
	}, nil
}

// classifyAvailabilityError keeps the auth/rate-limit/transport distinction
// intact while adding context.
func classifyAvailabilityError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAuthFailure):
		return fmt.Errorf("availability check: %w", err)
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("availability check: %w", err)
	default:
		return fmt.Errorf("availability check: %w: %v", domain.ErrTransport, err)
	}
}

// BuildSelection turns a policy plus one availability result into the
// ModelSelection record the invoker trusts. With force mode on, an
// unavailable preferred model yields an empty ResolvedModel and the pipeline
// must short-circuit rather than substitute.
func BuildSelection(preferred string, force bool, avail *Availability, checkErr error) domain.ModelSelection {
	selection := domain.ModelSelection{
		PreferredModel: preferred,
		ForceMode:      force,
	}

	if checkErr != nil {
		selection.UnavailableReason = checkErr.Error()
		return selection
	}

	if avail.Available {
		selection.ResolvedModel = preferred
		return selection
	}

	if force {
		selection.UnavailableReason = avail.Reason
		return selection
	}

	if avail.FallbackModel != "" {
		selection.ResolvedModel = avail.FallbackModel
		selection.UsedFallbackModel = true
		selection.UnavailableReason = avail.Reason
		return selection
	}

	selection.UnavailableReason = avail.Reason
	return selection
}
