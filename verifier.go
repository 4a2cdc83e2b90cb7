package walletauth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"go.uber.org/zap"
)

// Verifier checks bearer tokens against the trust domain's configuration
// and the public key held by the remote custody authority.
type Verifier struct {
	cfg     Config
	gateway SigningGateway
	logger  *zap.Logger
	now     func() time.Time
}

// NewVerifier builds a verifier from the given configuration and gateway.
func NewVerifier(cfg Config, gateway SigningGateway, opts ...Option) (*Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if gateway == nil {
		return nil, errors.New("signing gateway is required")
	}
	s := applyOptions(opts)
	return &Verifier{cfg: cfg, gateway: gateway, logger: s.logger, now: s.now}, nil
}

// Verify checks token and returns its claims. Local claim checks run
// before the signature check so that junk tokens are rejected without
// paying for a remote key fetch: structure, then expiry, then audience,
// then issuer, and only then the RS256 signature.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, newError(ErrCodeMalformedToken, errors.New("token must have three segments"))
	}

	payload, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, newError(ErrCodeMalformedToken, err)
	}
	var wire wireClaims
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, newError(ErrCodeMalformedToken, err)
	}

	now := v.now().UTC()
	if wire.Exp == 0 {
		return nil, newExpiredError(time.Time{}, now)
	}
	expiresAt := time.Unix(wire.Exp, 0).UTC()
	if expiresAt.Before(now) {
		return nil, newExpiredError(expiresAt, now)
	}

	if v.cfg.Audience != "" && !strings.EqualFold(wire.Aud, v.cfg.Audience) {
		return nil, newMismatchError(ErrCodeAudienceMismatch, v.cfg.Audience, wire.Aud)
	}
	if v.cfg.Domain != "" && !strings.EqualFold(wire.Iss, v.cfg.Domain) {
		return nil, newMismatchError(ErrCodeIssuerMismatch, v.cfg.Domain, wire.Iss)
	}

	pemKey, err := v.gateway.PublicKey(ctx, v.cfg.KeyID)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey([]byte(pemKey), jwk.WithPEM(true))
	if err != nil {
		return nil, newError(ErrCodeKeyUnavailable, err)
	}
	if _, err := jws.Verify([]byte(token), jws.WithKey(jwa.RS256, key)); err != nil {
		v.logger.Warn("token signature rejected",
			zap.String("subject", wire.Sub),
			zap.Error(err),
		)
		return nil, newError(ErrCodeInvalidSignature, err)
	}

	return wire.toClaims(), nil
}
