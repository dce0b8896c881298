package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"tenantgate/internal/models"
	"tenantgate/internal/store"
)

var (
	// ErrUnauthorized covers every credential and token failure. Unknown
	// email, wrong password, and bad tokens are indistinguishable to the
	// caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoTenant means a tenant-guard operation ran on a request that
	// resolved no tenant.
	ErrNoTenant = errors.New("no tenant resolved")
)

// UserStore is the principal lookup the authenticator needs from whichever
// connection the guard binds to.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint64) (*models.User, error)
}

// StoreAccessor yields the principal store for one guard on the current
// request. The tenant accessor reads the request's tenant context and fails
// with ErrNoTenant outside one.
type StoreAccessor func(ctx context.Context) (UserStore, error)

// TokenSource signs and parses bearer tokens. *TokenIssuer is the one
// implementation outside tests.
type TokenSource interface {
	Issue(userID uint64, guard Guard) (*IssuedToken, *Claims, error)
	Parse(token string) (*Claims, error)
}

// Authenticator issues, validates, rotates, and revokes bearer tokens per
// guard. The guard table maps each guard name to its store accessor; there
// is no subclassing and no ambient guard state.
type Authenticator struct {
	tokens  TokenSource
	revoker Revoker
	guards  map[Guard]StoreAccessor
}

func New(tokens TokenSource, revoker Revoker, system, tenant StoreAccessor) *Authenticator {
	return &Authenticator{
		tokens:  tokens,
		revoker: revoker,
		guards: map[Guard]StoreAccessor{
			GuardSystem: system,
			GuardTenant: tenant,
		},
	}
}

func (a *Authenticator) store(ctx context.Context, guard Guard) (UserStore, error) {
	accessor, ok := a.guards[guard]
	if !ok {
		return nil, ErrUnauthorized
	}
	return accessor(ctx)
}

// Login verifies credentials against the guard's store and issues a token.
// All failures surface as ErrUnauthorized; nothing is mutated on failure.
func (a *Authenticator) Login(ctx context.Context, guard Guard, email, password string) (*IssuedToken, error) {
	st, err := a.store(ctx, guard)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := st.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}

	issued, _, err := a.tokens.Issue(user.ID, guard)
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// CurrentPrincipal validates the token for the given guard and loads the
// principal behind it.
func (a *Authenticator) CurrentPrincipal(ctx context.Context, guard Guard, token string) (*models.User, *Claims, error) {
	claims, err := a.validate(ctx, guard, token)
	if err != nil {
		return nil, nil, err
	}

	st, err := a.store(ctx, guard)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	user, err := st.FindByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrUnauthorized
	}
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the token. Revocation lasts until the token would have
// expired on its own.
func (a *Authenticator) Logout(ctx context.Context, guard Guard, token string) error {
	claims, err := a.validate(ctx, guard, token)
	if err != nil {
		return err
	}
	return a.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Refresh rotates the token: a fresh one with a full TTL is issued for the
// same principal and guard, then the old one is revoked. Issuing comes
// first so a failed rotation leaves the old token usable. An expired or
// revoked token cannot be refreshed.
func (a *Authenticator) Refresh(ctx context.Context, guard Guard, token string) (*IssuedToken, error) {
	claims, err := a.validate(ctx, guard, token)
	if err != nil {
		return nil, err
	}

	issued, _, err := a.tokens.Issue(claims.UserID, guard)
	if err != nil {
		return nil, err
	}

	if err := a.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	return issued, nil
}

func (a *Authenticator) validate(ctx context.Context, guard Guard, token string) (*Claims, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Guard != guard.String() {
		return nil, ErrUnauthorized
	}
	revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
