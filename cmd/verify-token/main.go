package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/bionicotaku/lingo-utils-walletauth"
)

type environment struct {
	Domain     string        `env:"WALLETAUTH_DOMAIN"`
	Audience   string        `env:"WALLETAUTH_AUDIENCE"`
	KeyID      string        `env:"WALLETAUTH_KEY_ID"`
	Token      string        `env:"WALLETAUTH_TOKEN"`
	KMSTimeout time.Duration `env:"WALLETAUTH_KMS_TIMEOUT" envDefault:"10s"`
}

func main() {
	var envCfg environment
	if err := env.Parse(&envCfg); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	domain := flag.String("domain", envCfg.Domain, "Expected issuer domain (env WALLETAUTH_DOMAIN)")
	audience := flag.String("audience", envCfg.Audience, "Expected audience (env WALLETAUTH_AUDIENCE)")
	keyID := flag.String("key-id", envCfg.KeyID, "KMS crypto key version resource name (env WALLETAUTH_KEY_ID)")
	token := flag.String("token", envCfg.Token, "Compact token to verify (env WALLETAUTH_TOKEN)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	logger, err := walletauth.NewDevelopmentLogger(*debug)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = walletauth.SyncLogger(logger) }()

	if *token == "" {
		flag.Usage()
		log.Fatal("token is required (via flag or environment)")
	}
	if *domain == "" || *keyID == "" {
		flag.Usage()
		log.Fatal("domain and key-id are required (via flag or environment)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gateway, err := walletauth.NewCloudKMSGateway(ctx, walletauth.CloudKMSConfig{
		HTTPTimeout: envCfg.KMSTimeout,
	})
	if err != nil {
		log.Fatalf("create kms gateway: %v", err)
	}

	verifier, err := walletauth.NewVerifier(walletauth.Config{
		Domain:   *domain,
		Audience: *audience,
		KeyID:    *keyID,
	}, gateway, walletauth.WithLogger(logger))
	if err != nil {
		log.Fatalf("create verifier: %v", err)
	}

	claims, err := verifier.Verify(ctx, *token)
	if err != nil {
		var authErr *walletauth.Error
		if errors.As(err, &authErr) {
			log.Fatalf("verification failed (%s): %v", authErr.Code, err)
		}
		log.Fatalf("verification failed: %v", err)
	}

	printClaims(claims)
}

func printClaims(claims *walletauth.Claims) {
	fmt.Println("== Token Verified ==")
	fmt.Printf("subject    : %s\n", claims.Subject)
	fmt.Printf("issuer     : %s\n", claims.Issuer)
	fmt.Printf("audience   : %s\n", claims.Audience)
	if !claims.IssuedAt.IsZero() {
		fmt.Printf("issued_at  : %s\n", claims.IssuedAt.Format(time.RFC3339))
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("expires_at : %s\n", claims.ExpiresAt.Format(time.RFC3339))
	}
	if len(claims.Context) > 0 {
		fmt.Println("context:")
		for k, v := range claims.Context {
			fmt.Printf("  %s: %v\n", k, v)
		}
	}
}
