package walletauth

// DevBypassClaims holds attributes used when issuing synthetic claims in dev mode.
type DevBypassClaims struct {
	Subject  string
	Issuer   string
	Audience string
	Context  map[string]any
}

// ToCallerClaims converts the dev bypass configuration into caller claims.
func (d DevBypassClaims) ToCallerClaims() CallerClaims {
	claims := &Claims{
		Subject:  d.Subject,
		Issuer:   d.Issuer,
		Audience: d.Audience,
	}
	if len(d.Context) > 0 {
		claims.Context = make(map[string]any, len(d.Context))
		for k, v := range d.Context {
			claims.Context[k] = v
		}
	}
	return CallerClaims{
		Claims:    claims,
		DevBypass: true,
	}
}

// DefaultDevBypassClaims returns a baseline wallet identity suitable for
// local development.
func DefaultDevBypassClaims(audience string) DevBypassClaims {
	aud := audience
	if aud == "" {
		aud = "dev.local"
	}
	return DevBypassClaims{
		Subject:  "0x0000000000000000000000000000000000000dev",
		Issuer:   "walletauth.dev",
		Audience: aud,
	}
}
