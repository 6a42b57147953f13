// Package bootstrap builds the infrastructure shared by the api, scheduler and
// exitsctl binaries. Each main stays the composition root for its own modules.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exits_backend/internal/adapters/storage"
	digestrepo "exits_backend/internal/digest/repository"
	digestservice "exits_backend/internal/digest/service"
	"exits_backend/internal/email"
	"exits_backend/internal/events"
	"exits_backend/internal/listings"
	"exits_backend/internal/notification"
	"exits_backend/internal/notify"
	"exits_backend/internal/subscribers"
	"exits_backend/internal/vertical"
	"exits_backend/platform/cache"
	"exits_backend/platform/config"
	"exits_backend/platform/db"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const listingsCachePrefix = "exits:listings:"

// Infra holds the process-wide dependencies.
type Infra struct {
	Config    *config.Config
	Log       *logger.Logger
	Pool      *pgxpool.Pool // nil without DATABASE_URL
	Cache     *cache.Cache  // nil without REDIS_URL
	Verticals *vertical.Registry
	Bus       *events.InMemoryBus
	Sender    *email.TemplateSender
	Brands    *email.BrandResolver
	Archive   storage.ObjectStore // nil without MinIO
	Validator *validator.Validator

	Listings    *listings.Module
	Subscribers *subscribers.Module
}

// Open connects every configured backing service. Missing optional services
// leave their field nil; a configured service that cannot be reached fails.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infra, error) {
	reg, err := loadVerticals(cfg)
	if err != nil {
		return nil, err
	}

	infra := &Infra{
		Config:    cfg,
		Log:       log,
		Verticals: reg,
		Bus:       events.NewInMemoryBus(log),
		Brands:    email.NewBrandResolver(reg, cfg.GetAppBaseURL()),
		Validator: validator.New(),
	}

	if cfg.IsDatabaseConfigured() {
		if err := WithRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			infra.Pool = p
			return nil
		}); err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("database connection established")

		if cfg.GetMigrationsEnabled() {
			if err := db.RunMigrations(ctx, infra.Pool); err != nil {
				infra.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			log.Info("database migrations complete")
		}
	} else {
		log.Warn("DATABASE_URL not configured; store-backed routes will answer 503")
	}

	infra.Cache, err = cache.New(cfg.GetRedisURL(), listingsCachePrefix, cfg.GetListingsCacheTTL())
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	infra.Sender, err = email.NewSender(ctx, cfg)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init email sender: %w", err)
	}

	if cfg.IsMinIOEnabled() {
		store, err := storage.NewMinIOService(cfg)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		bucket := cfg.GetMinIOBucketDigests()
		if err := WithRetry(ctx, log, "ensure digests bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucketExists(ctx, bucket)
		}); err != nil {
			infra.Close()
			return nil, fmt.Errorf("ensure storage bucket: %w", err)
		}
		infra.Archive = store
		log.Info("storage service initialized", "digestsBucket", bucket)
	}

	infra.Listings = listings.NewModule(infra.Pool, infra.Cache, reg, infra.Validator, log)
	infra.Subscribers = subscribers.NewModule(infra.Pool, infra.Bus, reg, infra.Validator, log)

	return infra, nil
}

// RegisterNotifications subscribes the email and chat side effects to the bus.
func (i *Infra) RegisterNotifications() {
	chat := notify.NewClient(i.Config, i.Log)
	if !chat.Enabled() {
		i.Log.Info("CHAT_WEBHOOK_URL not configured; lead alerts disabled")
	}
	notification.New(i.Sender, chat, i.Brands, i.Log).RegisterHandlers(i.Bus)
}

// DigestService wires the weekly digest over the shared stores.
func (i *Infra) DigestService() *digestservice.Service {
	return digestservice.New(digestservice.Deps{
		Listings:    i.Listings.Service(),
		Subscribers: i.Subscribers.Service(),
		Runs:        digestrepo.New(i.Pool),
		Sender:      i.Sender,
		Brands:      i.Brands,
		Archive:     i.Archive,
		Bus:         i.Bus,
		Log:         i.Log,
	}, digestservice.Settings{
		BatchSize:    i.Config.GetDigestBatchSize(),
		LookbackDays: i.Config.GetDigestLookbackDays(),
		Size:         i.Config.GetDigestSize(),
		Bucket:       i.Config.GetMinIOBucketDigests(),
	})
}

// StoreAvailable reports whether the listings store is connected.
func (i *Infra) StoreAvailable() bool {
	return i.Pool != nil
}

// Close releases connections. It waits for in-flight event handlers first.
func (i *Infra) Close() {
	if i.Bus != nil {
		i.Bus.Wait()
	}
	if i.Cache != nil {
		_ = i.Cache.Close()
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
}

func loadVerticals(cfg config.VerticalConfig) (*vertical.Registry, error) {
	path := cfg.GetVerticalsFile()
	if path == "" {
		return vertical.LoadDefault()
	}
	reg, err := vertical.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load verticals from %s: %w", path, err)
	}
	return reg, nil
}

// WithRetry runs fn up to attempts times with quadratic backoff.
func WithRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
