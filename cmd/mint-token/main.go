package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/bionicotaku/lingo-utils-walletauth"
)

type environment struct {
	Domain        string        `env:"WALLETAUTH_DOMAIN"`
	Audience      string        `env:"WALLETAUTH_AUDIENCE"`
	KeyID         string        `env:"WALLETAUTH_KEY_ID"`
	TokenDuration time.Duration `env:"WALLETAUTH_TOKEN_DURATION" envDefault:"24h"`
	KMSTimeout    time.Duration `env:"WALLETAUTH_KMS_TIMEOUT" envDefault:"10s"`
}

func main() {
	var envCfg environment
	if err := env.Parse(&envCfg); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	domain := flag.String("domain", envCfg.Domain, "Issuer domain (env WALLETAUTH_DOMAIN)")
	audience := flag.String("audience", envCfg.Audience, "Audience claim (env WALLETAUTH_AUDIENCE)")
	keyID := flag.String("key-id", envCfg.KeyID, "KMS crypto key version resource name (env WALLETAUTH_KEY_ID)")
	duration := flag.Duration("duration", envCfg.TokenDuration, "Token lifetime (env WALLETAUTH_TOKEN_DURATION)")
	subject := flag.String("subject", "", "Principal identifier, e.g. a wallet address")
	email := flag.String("email", "", "Optional email stored in the context claim")
	localKey := flag.Bool("local-key", false, "Sign with an ephemeral in-process key instead of Cloud KMS")
	debug := flag.Bool("debug", false, "Enable debug logging")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	logger, err := walletauth.NewDevelopmentLogger(*debug)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = walletauth.SyncLogger(logger) }()

	if *subject == "" {
		flag.Usage()
		log.Fatal("subject is required")
	}
	if *domain == "" {
		flag.Usage()
		log.Fatal("domain is required (via flag or environment)")
	}
	if *keyID == "" {
		if !*localKey {
			flag.Usage()
			log.Fatal("key-id is required unless -local-key is set")
		}
		*keyID = "local"
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var gateway walletauth.SigningGateway
	if *localKey {
		local := walletauth.NewLocalKeyGateway()
		if _, err := local.GenerateKey(*keyID); err != nil {
			log.Fatalf("generate local key: %v", err)
		}
		gateway = local
		log.Println("signing with an ephemeral local key; tokens will not verify elsewhere")
	} else {
		kms, err := walletauth.NewCloudKMSGateway(ctx, walletauth.CloudKMSConfig{
			HTTPTimeout: envCfg.KMSTimeout,
		})
		if err != nil {
			log.Fatalf("create kms gateway: %v", err)
		}
		gateway = kms
	}

	issuer, err := walletauth.NewIssuer(walletauth.Config{
		Domain:        *domain,
		Audience:      *audience,
		KeyID:         *keyID,
		TokenDuration: *duration,
	}, gateway, walletauth.WithLogger(logger))
	if err != nil {
		log.Fatalf("create issuer: %v", err)
	}

	var opts []walletauth.IssueOption
	if *email != "" {
		opts = append(opts, walletauth.WithContextClaims(map[string]any{"email": *email}))
	}

	token, err := issuer.Issue(ctx, *subject, opts...)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
