package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/estatepulse/crm-cli/internal/assist"
	"github.com/estatepulse/crm-cli/internal/crm"
	"github.com/estatepulse/crm-cli/internal/store"
	"github.com/estatepulse/crm-cli/pkg/anthropic"
)

// Actor identity flags, shared by every command that touches records.
var (
	flagAgency string
	flagAsUser string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAgency, "agency", "", "agency (tenant) id")
	rootCmd.PersistentFlags().StringVar(&flagAsUser, "as", "", "act as this user email")
}

// openStore builds the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newAssist builds the AI layer, or nil when no key is configured.
func newAssist() *assist.Service {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	return assist.New(anthropic.NewClient(cfg.Anthropic.Key), assist.Config{
		Model:      cfg.Anthropic.Model,
		MaxTokens:  int64(cfg.Anthropic.MaxTokens),
		BatchSize:  cfg.Import.RemapBatchSize,
		RatePerSec: cfg.Anthropic.RatePerSec,
	})
}

// newService wires the CRM service over the store. ai may be nil.
func newService(st store.Store) *crm.Service {
	ai := newAssist()
	if ai == nil {
		return crm.New(st, nil)
	}
	return crm.New(st, ai)
}

// actorScope resolves the --as/--agency identity into a store scope.
func actorScope(ctx context.Context, svc *crm.Service) (store.Scope, error) {
	if flagAsUser == "" {
		return store.Scope{}, eris.New("--as user email is required")
	}
	u, err := svc.Login(ctx, flagAsUser, flagAgency)
	if err != nil {
		return store.Scope{}, err
	}
	return store.Scope{AgencyID: u.AgencyID, Role: u.Role, UserID: u.ID}, nil
}
