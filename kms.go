package walletauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	cloudkms "google.golang.org/api/cloudkms/v1"
	"google.golang.org/api/option"
)

const defaultKMSTimeout = 10 * time.Second

// CloudKMSConfig configures the Cloud KMS signing gateway.
type CloudKMSConfig struct {
	// TokenSource supplies credentials for the KMS client. When nil,
	// Application Default Credentials apply.
	TokenSource oauth2.TokenSource

	// HTTPTimeout bounds each KMS call.
	HTTPTimeout time.Duration

	// Endpoint overrides the KMS API endpoint, mainly for tests.
	Endpoint string
}

func (c *CloudKMSConfig) normalize() {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultKMSTimeout
	}
}

// CloudKMSGateway implements SigningGateway against Google Cloud KMS. Key
// ids are full crypto key version resource names
// (projects/.../cryptoKeyVersions/N). The private key never leaves KMS;
// this process only ships digests and receives signatures.
type CloudKMSGateway struct {
	cfg CloudKMSConfig
	svc *cloudkms.Service
}

// NewCloudKMSGateway builds a gateway backed by the Cloud KMS API.
func NewCloudKMSGateway(ctx context.Context, cfg CloudKMSConfig) (*CloudKMSGateway, error) {
	cfg.normalize()
	opts := []option.ClientOption{}
	if cfg.TokenSource != nil {
		opts = append(opts, option.WithTokenSource(cfg.TokenSource))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := cloudkms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create kms service: %w", err)
	}
	return &CloudKMSGateway{cfg: cfg, svc: svc}, nil
}

// Sign implements SigningGateway. The SHA-256 digest is computed locally;
// KMS signs the digest with the referenced key version.
func (g *CloudKMSGateway) Sign(ctx context.Context, keyID string, message []byte) ([]byte, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	digest := sha256.Sum256(message)
	req := &cloudkms.AsymmetricSignRequest{
		Digest: &cloudkms.Digest{
			Sha256: base64.StdEncoding.EncodeToString(digest[:]),
		},
	}
	resp, err := g.svc.Projects.Locations.KeyRings.CryptoKeys.CryptoKeyVersions.
		AsymmetricSign(keyID, req).Context(callCtx).Do()
	if err != nil {
		return nil, newError(ErrCodeSigningUnavailable, err)
	}
	if resp == nil || resp.Signature == "" {
		return nil, newError(ErrCodeSigningUnavailable, errors.New("kms returned no signature"))
	}
	sig, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil {
		return nil, newError(ErrCodeSigningUnavailable, fmt.Errorf("decode kms signature: %w", err))
	}
	if len(sig) == 0 {
		return nil, newError(ErrCodeSigningUnavailable, errors.New("kms returned empty signature"))
	}
	return sig, nil
}

// PublicKey implements SigningGateway.
func (g *CloudKMSGateway) PublicKey(ctx context.Context, keyID string) (string, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()

	resp, err := g.svc.Projects.Locations.KeyRings.CryptoKeys.CryptoKeyVersions.
		GetPublicKey(keyID).Context(callCtx).Do()
	if err != nil {
		return "", newError(ErrCodeKeyUnavailable, err)
	}
	if resp == nil || resp.Pem == "" {
		return "", newError(ErrCodeKeyUnavailable, errors.New("kms returned no key material"))
	}
	return resp.Pem, nil
}

func (g *CloudKMSGateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.HTTPTimeout > 0 {
		return context.WithTimeout(ctx, g.cfg.HTTPTimeout)
	}
	return ctx, func() {}
}
