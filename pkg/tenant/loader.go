package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/pkg/domain"
)

// ProfileStore is the read-only lookup the loader needs.
// *repository.ProfilesRepository satisfies it.
type ProfileStore interface {
	GetTenantProfile(ctx context.Context, userID uuid.UUID) (*domain.TenantProfile, error)
}

// Loader fetches a user's tenant profile and reduces it to the effective
// state the gate consumes.
//
// Authorization data fails closed: if the store errors or times out, the
// user is treated as having no gym and no role. The raw profile is never
// cached across requests; staleness control lives entirely in the
// decision cache TTL.
type Loader struct {
	store   ProfileStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewLoader creates a profile loader.
func NewLoader(store ProfileStore, timeout time.Duration, logger *slog.Logger) *Loader {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Loader{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Load returns the user's effective tenant state. It never returns an
// error; lookup failures reduce to the zero state.
func (l *Loader) Load(ctx context.Context, userID uuid.UUID) domain.EffectiveTenantState {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	profile, err := l.store.GetTenantProfile(ctx, userID)
	if err != nil {
		l.logger.Error("tenant profile lookup failed, denying tenant access",
			"user_id", userID,
			"error", err,
		)
		return domain.EffectiveTenantState{}
	}

	return profile.Reduce()
}
