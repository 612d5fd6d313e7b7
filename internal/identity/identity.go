// Package identity provisions and persists the anonymous guest account the
// client acts as. One opaque identifier is kept per state directory; it is
// re-validated against the backend on every startup and silently replaced
// when the backend no longer knows it.
package identity

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"echomap/internal/api"
)

// guestSuffixRange bounds the random username suffix. Wide enough that a
// collision with an existing guest is practically negligible.
const guestSuffixRange = 1_000_000_000

// guestPassword is the fixed placeholder password for auto-provisioned
// accounts; guests never log in with credentials.
const guestPassword = "password"

// Backend is the slice of the remote client bootstrap needs.
type Backend interface {
	GetUser(ctx context.Context, id string) (api.User, error)
	CreateUser(ctx context.Context, username, email, password string) (api.User, error)
}

// Bootstrapper establishes the session identity.
type Bootstrapper struct {
	store   Store
	backend Backend
	logger  *zap.Logger

	// suffix lets tests pin the generated guest name.
	suffix func() int64
}

// NewBootstrapper wires a Bootstrapper over a persistence store and the
// remote backend.
func NewBootstrapper(store Store, backend Backend, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{
		store:   store,
		backend: backend,
		logger:  logger,
		suffix:  func() int64 { return rand.Int64N(guestSuffixRange) },
	}
}

// Bootstrap produces the session's user identifier.
//
// A persisted identifier that still exists on the backend is adopted as-is.
// Otherwise any stale value is discarded and a single guest-creation attempt
// is made. If creation also fails the session proceeds without identity:
// the empty string is returned with a nil error, since browsing works
// unauthenticated and only upload attribution needs an account.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (string, error) {
	stored, err := b.store.Load()
	if err != nil {
		b.logger.Warn("could not read persisted identity", zap.Error(err))
		stored = ""
	}

	if stored != "" {
		if _, err := b.backend.GetUser(ctx, stored); err == nil {
			b.logger.Debug("adopted persisted identity", zap.String("user_id", stored))
			return stored, nil
		} else if !api.IsNotFound(err) {
			// Network failure is treated the same as not-found: the
			// stored value cannot be trusted for attribution this run.
			b.logger.Warn("identity validation failed", zap.String("user_id", stored), zap.Error(err))
		} else {
			b.logger.Info("persisted identity unknown to backend, re-provisioning",
				zap.String("user_id", stored))
		}
		if err := b.store.Clear(); err != nil {
			b.logger.Warn("could not clear stale identity", zap.Error(err))
		}
	}

	n := b.suffix()
	username := fmt.Sprintf("guest_%d", n)
	email := fmt.Sprintf("guest_%d@example.com", n)

	user, err := b.backend.CreateUser(ctx, username, email, guestPassword)
	if err != nil {
		b.logger.Error("guest creation failed, continuing without identity", zap.Error(err))
		return "", nil
	}

	if err := b.store.Save(user.ID); err != nil {
		b.logger.Warn("could not persist identity", zap.String("user_id", user.ID), zap.Error(err))
	}
	b.logger.Info("provisioned guest identity",
		zap.String("user_id", user.ID),
		zap.String("username", username))
	return user.ID, nil
}
