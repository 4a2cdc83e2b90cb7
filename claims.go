package walletauth

import (
	"encoding/json"
	"fmt"
	"time"
)

// Claims represents the signed payload of a bearer token. Claims are built
// once per authentication event and never mutated after signing; a changed
// claim means a reissued token.
type Claims struct {
	Issuer    string
	Subject   string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Context holds caller-supplied claims, e.g. an email address.
	Context map[string]any
}

// wireClaims is the JSON form placed in the token's second segment.
type wireClaims struct {
	Iss string         `json:"iss"`
	Sub string         `json:"sub"`
	Aud string         `json:"aud"`
	Exp int64          `json:"exp"`
	Iat int64          `json:"iat"`
	Ctx map[string]any `json:"ctx,omitempty"`
}

func (c Claims) toWire() wireClaims {
	return wireClaims{
		Iss: c.Issuer,
		Sub: c.Subject,
		Aud: c.Audience,
		Exp: c.ExpiresAt.Unix(),
		Iat: c.IssuedAt.Unix(),
		Ctx: c.Context,
	}
}

func (w wireClaims) toClaims() *Claims {
	claims := &Claims{
		Issuer:   w.Iss,
		Subject:  w.Sub,
		Audience: w.Aud,
	}
	if w.Exp != 0 {
		claims.ExpiresAt = time.Unix(w.Exp, 0).UTC()
	}
	if w.Iat != 0 {
		claims.IssuedAt = time.Unix(w.Iat, 0).UTC()
	}
	if len(w.Ctx) > 0 {
		claims.Context = make(map[string]any, len(w.Ctx))
		for k, v := range w.Ctx {
			claims.Context[k] = v
		}
	}
	return claims
}

// ContextAs decodes the context claim into a caller-defined type.
func ContextAs[T any](claims *Claims) (T, error) {
	var out T
	if claims == nil || claims.Context == nil {
		return out, nil
	}
	raw, err := json.Marshal(claims.Context)
	if err != nil {
		return out, fmt.Errorf("encode context claim: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode context claim: %w", err)
	}
	return out, nil
}
