package walletauth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
)

// SigningGateway abstracts a remote custody authority holding a private
// asymmetric key addressed by a stable key id. Both operations are
// idempotent network I/O; failures are surfaced to the caller, never
// retried internally, so a persistent outage stays visible.
type SigningGateway interface {
	// Sign returns a signature over message. It fails with a
	// signing_unavailable error when the authority produces no signature;
	// a zero-length signature is never returned silently.
	Sign(ctx context.Context, keyID string, message []byte) ([]byte, error)

	// PublicKey returns the PEM-encoded public key for keyID. It fails
	// with a key_unavailable error when no key material is returned.
	PublicKey(ctx context.Context, keyID string) (string, error)
}

// LocalKeyGateway implements SigningGateway with in-process RSA keys. It
// exists for unit tests and local development; production deployments use
// CloudKMSGateway so the private key never enters this process.
type LocalKeyGateway struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PrivateKey
}

// NewLocalKeyGateway returns an empty local gateway.
func NewLocalKeyGateway() *LocalKeyGateway {
	return &LocalKeyGateway{keys: make(map[string]*rsa.PrivateKey)}
}

// AddKey registers an existing private key under keyID.
func (g *LocalKeyGateway) AddKey(keyID string, key *rsa.PrivateKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys[keyID] = key
}

// GenerateKey creates and registers a 2048-bit RSA key under keyID.
func (g *LocalKeyGateway) GenerateKey(keyID string) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	g.AddKey(keyID, key)
	return key, nil
}

// Sign implements SigningGateway.
func (g *LocalKeyGateway) Sign(ctx context.Context, keyID string, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(ErrCodeSigningUnavailable, err)
	}
	key, ok := g.lookup(keyID)
	if !ok {
		return nil, newError(ErrCodeSigningUnavailable, fmt.Errorf("key %q not registered", keyID))
	}
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, newError(ErrCodeSigningUnavailable, err)
	}
	if len(sig) == 0 {
		return nil, newError(ErrCodeSigningUnavailable, errors.New("empty signature"))
	}
	return sig, nil
}

// PublicKey implements SigningGateway.
func (g *LocalKeyGateway) PublicKey(ctx context.Context, keyID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError(ErrCodeKeyUnavailable, err)
	}
	key, ok := g.lookup(keyID)
	if !ok {
		return "", newError(ErrCodeKeyUnavailable, fmt.Errorf("key %q not registered", keyID))
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", newError(ErrCodeKeyUnavailable, err)
	}
	encoded := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return string(encoded), nil
}

func (g *LocalKeyGateway) lookup(keyID string) (*rsa.PrivateKey, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	key, ok := g.keys[keyID]
	return key, ok
}
