package walletauth

import (
	"context"
	"crypto/rsa"
	"testing"
	"time"
)

const testKeyID = "projects/test/locations/global/keyRings/auth/cryptoKeys/signing/cryptoKeyVersions/1"

func newTestGateway(t *testing.T) (*LocalKeyGateway, *rsa.PrivateKey) {
	t.Helper()
	gateway := NewLocalKeyGateway()
	key, err := gateway.GenerateKey(testKeyID)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return gateway, key
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// countingGateway records gateway traffic so tests can assert that local
// claim rejections never pay for a key fetch.
type countingGateway struct {
	inner     SigningGateway
	signCalls int
	keyCalls  int
}

func (c *countingGateway) Sign(ctx context.Context, keyID string, message []byte) ([]byte, error) {
	c.signCalls++
	return c.inner.Sign(ctx, keyID, message)
}

func (c *countingGateway) PublicKey(ctx context.Context, keyID string) (string, error) {
	c.keyCalls++
	return c.inner.PublicKey(ctx, keyID)
}

// failingGateway fails every call with the given errors.
type failingGateway struct {
	signErr error
	keyErr  error
}

func (f *failingGateway) Sign(ctx context.Context, keyID string, message []byte) ([]byte, error) {
	return nil, f.signErr
}

func (f *failingGateway) PublicKey(ctx context.Context, keyID string) (string, error) {
	return "", f.keyErr
}
