package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Oracle asks the billing service whether a user's gym still has product
// access (active subscription or live trial).
//
// This check fails OPEN: a billing outage must not lock paying customers
// out, so any transport error, non-200 status, decode failure, or
// timeout grants access. This is the only fail-open collaborator in the
// gate and the asymmetry is deliberate.
type Oracle struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOracle creates a subscription oracle client.
func NewOracle(baseURL string, timeout time.Duration, logger *slog.Logger) *Oracle {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Oracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type accessResponse struct {
	HasAccess bool `json:"has_access"`
}

// HasAccess reports whether the user's gym has subscription access.
func (o *Oracle) HasAccess(ctx context.Context, userID uuid.UUID) bool {
	url := fmt.Sprintf("%s/v1/access/%s", o.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return o.failOpen(userID, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return o.failOpen(userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return o.failOpen(userID, fmt.Errorf("billing returned status %d", resp.StatusCode))
	}

	var body accessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return o.failOpen(userID, err)
	}

	return body.HasAccess
}

func (o *Oracle) failOpen(userID uuid.UUID, err error) bool {
	o.logger.Warn("subscription check failed, granting access",
		"user_id", userID,
		"error", err,
	)
	return true
}
