package walletauth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func TestIssuer_RoundTrip(t *testing.T) {
	gateway, _ := newTestGateway(t)
	mintedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cfg := Config{
		Domain:        "auth.example",
		Audience:      "app.example",
		KeyID:         testKeyID,
		TokenDuration: time.Hour,
	}
	issuer, err := NewIssuer(cfg, gateway, WithClock(fixedClock(mintedAt)))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, err := issuer.Issue(context.Background(), "0xAbC123",
		WithContextClaims(map[string]any{"email": "user@example.com"}))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier, err := NewVerifier(cfg, gateway, WithClock(fixedClock(mintedAt.Add(30*time.Minute))))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.Subject != "0xAbC123" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Issuer != "auth.example" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.Audience != "app.example" {
		t.Fatalf("unexpected audience: %s", claims.Audience)
	}
	if !claims.IssuedAt.Equal(mintedAt) {
		t.Fatalf("unexpected issued-at: %s", claims.IssuedAt)
	}
	if !claims.ExpiresAt.Equal(mintedAt.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", claims.ExpiresAt)
	}
	if email, _ := claims.Context["email"].(string); email != "user@example.com" {
		t.Fatalf("unexpected context email: %v", claims.Context["email"])
	}
}

func TestIssuer_FixedHeader(t *testing.T) {
	gateway, _ := newTestGateway(t)
	issuer, err := NewIssuer(Config{Domain: "auth.example", KeyID: testKeyID}, gateway)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, err := issuer.Issue(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	header, err := DecodeSegment(strings.SplitN(token, ".", 2)[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if string(header) != `{"alg":"RS256","typ":"JWT"}` {
		t.Fatalf("unexpected header: %s", header)
	}
}

// The expiry base override shifts the window; the configured duration is
// still added on top of it.
func TestIssuer_ExpiryBaseShift(t *testing.T) {
	gateway, _ := newTestGateway(t)
	mintedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := mintedAt.Add(2 * time.Hour)

	issuer, err := NewIssuer(Config{
		Domain:        "auth.example",
		KeyID:         testKeyID,
		TokenDuration: 24 * time.Hour,
	}, gateway, WithClock(fixedClock(mintedAt)))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, err := issuer.Issue(context.Background(), "0xabc", WithExpiryBase(base))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	payload, err := DecodeSegment(strings.Split(token, ".")[1])
	if err != nil {
		t.Fatalf("decode claims: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(payload, &wire); err != nil {
		t.Fatalf("unmarshal claims: %v", err)
	}
	wantExp := base.Add(24 * time.Hour).Unix()
	if exp := int64(wire["exp"].(float64)); exp != wantExp {
		t.Fatalf("unexpected exp: got %d, want %d", exp, wantExp)
	}
	if iat := int64(wire["iat"].(float64)); iat != mintedAt.Unix() {
		t.Fatalf("unexpected iat: got %d, want %d", iat, mintedAt.Unix())
	}
}

func TestIssuer_SigningUnavailablePropagates(t *testing.T) {
	cause := errors.New("custody authority down")
	gateway := &failingGateway{signErr: newError(ErrCodeSigningUnavailable, cause)}

	issuer, err := NewIssuer(Config{Domain: "auth.example", KeyID: testKeyID}, gateway)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	_, err = issuer.Issue(context.Background(), "0xabc")
	if err == nil {
		t.Fatal("expected error")
	}
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if authErr.Code != ErrCodeSigningUnavailable {
		t.Fatalf("unexpected error code: %s", authErr.Code)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to be preserved")
	}
}

func TestIssuer_SubjectRequired(t *testing.T) {
	gateway, _ := newTestGateway(t)
	issuer, err := NewIssuer(Config{Domain: "auth.example", KeyID: testKeyID}, gateway)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	if _, err := issuer.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

// Minted tokens must interoperate with standard RS256 JWT consumers.
func TestIssuer_JWXInterop(t *testing.T) {
	gateway, key := newTestGateway(t)
	mintedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer, err := NewIssuer(Config{
		Domain:        "auth.example",
		Audience:      "app.example",
		KeyID:         testKeyID,
		TokenDuration: time.Hour,
	}, gateway, WithClock(fixedClock(mintedAt)))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, err := issuer.Issue(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	pub, err := jwk.FromRaw(&key.PublicKey)
	if err != nil {
		t.Fatalf("public key jwk: %v", err)
	}
	parsed, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.RS256, pub), jwt.WithValidate(false))
	if err != nil {
		t.Fatalf("jwt.Parse: %v", err)
	}
	if parsed.Subject() != "0xabc" {
		t.Fatalf("unexpected subject: %s", parsed.Subject())
	}
	if parsed.Issuer() != "auth.example" {
		t.Fatalf("unexpected issuer: %s", parsed.Issuer())
	}
	if aud := parsed.Audience(); len(aud) != 1 || aud[0] != "app.example" {
		t.Fatalf("unexpected audience: %v", aud)
	}
	if !parsed.Expiration().Equal(mintedAt.Add(time.Hour)) {
		t.Fatalf("unexpected expiration: %s", parsed.Expiration())
	}
}
