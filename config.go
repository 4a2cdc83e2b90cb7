package walletauth

import (
	"errors"
	"time"
)

const (
	defaultTokenDuration         = 24 * time.Hour
	defaultMinRemaining          = 5 * time.Minute
	defaultMaxDelegationLifetime = 30 * 24 * time.Hour
	defaultBackdateMargin        = 10 * time.Minute
)

// Config describes the trust domain tokens are minted for and the remote
// key used to sign them.
type Config struct {
	// Domain is the issuer claim stamped into minted tokens and, when set,
	// the issuer expected during verification.
	Domain string

	// Audience is the intended consumer domain. Optional for verification;
	// when empty, the audience claim is not checked.
	Audience string

	// KeyID addresses the signing key held by the remote custody authority.
	KeyID string

	// TokenDuration is added to the expiry base when minting.
	TokenDuration time.Duration
}

// normalize sets default values for optional fields.
func (c *Config) normalize() {
	if c.TokenDuration <= 0 {
		c.TokenDuration = defaultTokenDuration
	}
}

// validate ensures the configuration is usable.
func (c Config) validate() error {
	switch {
	case c.Domain == "":
		return errors.New("issuer domain is required")
	case c.KeyID == "":
		return errors.New("signing key id is required")
	}
	return nil
}

// ReconcilerConfig bounds how existing delegations are judged and how new
// grants are shaped.
type ReconcilerConfig struct {
	// DefaultMinRemaining applies when a request does not specify its own
	// minimum remaining duration. A delegation whose remaining life is not
	// strictly greater than the floor is treated as spent.
	DefaultMinRemaining time.Duration

	// MaxDelegationLifetime rejects delegations whose remaining life is
	// absurdly long; such grants are re-created rather than trusted.
	MaxDelegationLifetime time.Duration

	// BackdateMargin is subtracted from a new grant's start timestamp to
	// tolerate clock skew between the submitting client and the chain.
	BackdateMargin time.Duration
}

func (c *ReconcilerConfig) normalize() {
	if c.DefaultMinRemaining <= 0 {
		c.DefaultMinRemaining = defaultMinRemaining
	}
	if c.MaxDelegationLifetime <= 0 {
		c.MaxDelegationLifetime = defaultMaxDelegationLifetime
	}
	if c.BackdateMargin <= 0 {
		c.BackdateMargin = defaultBackdateMargin
	}
}
