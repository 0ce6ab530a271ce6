package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/medtrack/medtrack-service/internal/domain/auth"
	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
	"github.com/medtrack/medtrack-service/internal/domain/medication"
	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
	"github.com/medtrack/medtrack-service/internal/infra/caregiverrepo"
	"github.com/medtrack/medtrack-service/internal/infra/config"
	"github.com/medtrack/medtrack-service/internal/infra/medrepo"
	"github.com/medtrack/medtrack-service/internal/infra/overpass"
	"github.com/medtrack/medtrack-service/internal/infra/pharmacyrepo"
	"github.com/medtrack/medtrack-service/internal/infra/placescache"
	"github.com/medtrack/medtrack-service/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func providePharmacyConfig(cfg *config.Config) pharmacy.Config {
	return pharmacy.Config{
		DefaultRadiusKm: cfg.Places.DefaultRadiusKm,
		CacheTTL:        cfg.Places.CacheTTL,
	}
}

func providePlacesClient(cfg *config.Config) *overpass.Client {
	return overpass.NewClient(cfg.Places.BaseURL, overpass.Options{
		Timeout:          cfg.Places.RequestTimeout,
		BreakerEnabled:   cfg.Places.Breaker.Enabled,
		FailureThreshold: cfg.Places.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Places.Breaker.OpenTimeout,
	})
}

// providePgxPool connects to Postgres when a DSN is configured. A nil pool
// makes every repository fall back to its in-memory implementation.
func providePgxPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Store.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Store.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
	}
	if cfg.Store.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Store.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideMedicationRepository(pool *pgxpool.Pool) medication.Repository {
	if pool == nil {
		return medrepo.NewMemoryRepository()
	}
	return medrepo.NewPostgresRepository(pool)
}

func provideCaregiverRepository(pool *pgxpool.Pool) caregiver.Repository {
	if pool == nil {
		return caregiverrepo.NewMemoryRepository()
	}
	return caregiverrepo.NewPostgresRepository(pool)
}

func providePharmacyRepository(pool *pgxpool.Pool) pharmacy.Repository {
	if pool == nil {
		return pharmacyrepo.NewMemoryRepository()
	}
	return pharmacyrepo.NewPostgresRepository(pool)
}

func providePlacesCache(cfg *config.Config, logger *slog.Logger) pharmacy.Cache {
	if cfg.Store.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return placescache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return placescache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("places valkey cache enabled", "addr", cfg.Store.Valkey.Addr)
			return placescache.NewValkeyStore(client, "places")
		}
	}
	return placescache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Store.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Store.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Store.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
