package walletauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// tokenHeader is the fixed first segment: {"alg":"RS256","typ":"JWT"}.
var tokenHeader = EncodeSegment([]byte(`{"alg":"RS256","typ":"JWT"}`))

// IssueOption customizes the claims for a single Issue call.
type IssueOption func(*issueParams)

type issueParams struct {
	issuer     string
	audience   string
	context    map[string]any
	issuedAt   time.Time
	expiryBase time.Time
}

// WithIssuerDomain overrides the issuer claim for this token.
func WithIssuerDomain(domain string) IssueOption {
	return func(p *issueParams) {
		p.issuer = domain
	}
}

// WithAudience overrides the audience claim for this token.
func WithAudience(audience string) IssueOption {
	return func(p *issueParams) {
		p.audience = audience
	}
}

// WithContextClaims attaches caller-supplied claims under the ctx claim.
func WithContextClaims(claims map[string]any) IssueOption {
	return func(p *issueParams) {
		p.context = claims
	}
}

// WithIssuedAt overrides the issued-at claim.
func WithIssuedAt(issuedAt time.Time) IssueOption {
	return func(p *issueParams) {
		p.issuedAt = issuedAt
	}
}

// WithExpiryBase replaces the base time the configured token duration is
// added to. The duration is still added on top: a base of T with a 24h
// configured duration expires at T+24h, not at T.
func WithExpiryBase(base time.Time) IssueOption {
	return func(p *issueParams) {
		p.expiryBase = base
	}
}

// Issuer mints bearer tokens signed by the remote custody authority.
type Issuer struct {
	cfg     Config
	gateway SigningGateway
	logger  *zap.Logger
	now     func() time.Time
}

// NewIssuer builds an issuer from the given configuration and gateway.
func NewIssuer(cfg Config, gateway SigningGateway, opts ...Option) (*Issuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if gateway == nil {
		return nil, errors.New("signing gateway is required")
	}
	s := applyOptions(opts)
	return &Issuer{cfg: cfg, gateway: gateway, logger: s.logger, now: s.now}, nil
}

// Issue builds claims for subject, signs them through the gateway, and
// returns the compact token. Signing failures propagate verbatim; a
// partially signed token is never returned.
func (i *Issuer) Issue(ctx context.Context, subject string, opts ...IssueOption) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	params := issueParams{
		issuer:   i.cfg.Domain,
		audience: i.cfg.Audience,
	}
	for _, opt := range opts {
		opt(&params)
	}

	now := i.now().UTC().Truncate(time.Second)
	issuedAt := params.issuedAt
	if issuedAt.IsZero() {
		issuedAt = now
	}
	expiryBase := params.expiryBase
	if expiryBase.IsZero() {
		expiryBase = now
	}
	expiresAt := expiryBase.Add(i.cfg.TokenDuration)
	if !expiresAt.After(issuedAt) {
		return "", fmt.Errorf("expiry %d not after issued-at %d", expiresAt.Unix(), issuedAt.Unix())
	}

	claims := Claims{
		Issuer:    params.issuer,
		Subject:   subject,
		Audience:  params.audience,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Context:   params.context,
	}
	payload, err := json.Marshal(claims.toWire())
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}

	signingInput := tokenHeader + "." + EncodeSegment(payload)
	signature, err := i.gateway.Sign(ctx, i.cfg.KeyID, []byte(signingInput))
	if err != nil {
		return "", err
	}

	i.logger.Debug("issued token",
		zap.String("subject", subject),
		zap.String("audience", claims.Audience),
		zap.Time("expires_at", expiresAt),
	)
	return signingInput + "." + EncodeSegment(signature), nil
}
