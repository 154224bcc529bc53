package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/angelmondragon/cartsync/internal/cart"
	pkgAuth "github.com/angelmondragon/cartsync/pkg/auth"
	"github.com/angelmondragon/cartsync/pkg/cartclient"
	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cartctl", Output: os.Stderr, Format: "console"})

	_ = godotenv.Load()

	baseURL := flag.String("api", "", "cart api base url (overrides CARTSYNC_API_URL)")
	session := flag.String("session", "", "guest session id (overrides CARTSYNC_SESSION_ID)")
	mintSubject := flag.String("mint-subject", "", "mint a bearer token for this subject with CARTSYNC_JWT_SECRET")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "cartctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Output:      os.Stderr,
		Format:      "console",
	})

	creds := cartclient.Credentials{
		BearerToken:      cfg.Client.BearerToken,
		TelegramInitData: cfg.Client.TelegramInit,
		SessionID:        cfg.Client.SessionID,
	}
	if *session != "" {
		creds = cartclient.Credentials{SessionID: *session}
	}
	if *mintSubject != "" {
		token, err := pkgAuth.MintActorToken(cfg.JWT, time.Now(), *mintSubject, *mintSubject)
		if err != nil {
			logg.Error(ctx, "failed to mint bearer token", err)
			os.Exit(1)
		}
		creds = cartclient.Credentials{BearerToken: token}
	}

	api := cfg.Client.BaseURL
	if *baseURL != "" {
		api = *baseURL
	}
	client, err := cartclient.NewClient(api, cartclient.WithCredentials(creds), cartclient.WithTimeout(cfg.Engine.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to build cart api client", err)
		os.Exit(1)
	}

	out := os.Stdout
	engine, err := cart.New(cart.Options{
		Remote:       client,
		Logger:       logg,
		Metrics:      metrics.NewCartMetrics(prometheus.NewRegistry()),
		MaxQuantity:  cfg.Engine.MaxQuantity,
		SyncDelay:    cfg.Engine.SyncDelay,
		PricingDelay: cfg.Engine.PricingDelay,
		Timeout:      cfg.Engine.Timeout,
		Notify: func(n cart.Notice) {
			fmt.Fprintf(out, "! %s: %s\n", n.Kind, n.Message)
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to build cart engine", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := engine.Load(runCtx); err != nil {
		fmt.Fprintf(out, "cart load failed, continuing with an empty cart: %v\n", err)
	}

	shell := newShell(engine, os.Stdin, out)
	if err := shell.run(runCtx); err != nil {
		logg.Error(ctx, "shell stopped", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.Timeout)
	defer cancel()
	if err := engine.Close(closeCtx); err != nil {
		fmt.Fprintf(out, "some changes may not have been saved: %v\n", err)
		os.Exit(1)
	}
}
