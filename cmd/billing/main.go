// Command billing serves the subscription engine over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/imobflow/billing/migrations"
	"github.com/imobflow/billing/modules/billing"
	"github.com/imobflow/billing/pkg/asaas"
	"github.com/imobflow/billing/pkg/config"
	"github.com/imobflow/billing/pkg/httpserver"
	"github.com/imobflow/billing/pkg/locker"
	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/pg"
	"github.com/imobflow/billing/pkg/qrcode"
	"github.com/imobflow/billing/pkg/redis"
	"github.com/imobflow/billing/pkg/requestid"
	"github.com/imobflow/billing/pkg/subscription"
	"github.com/imobflow/billing/pkg/subscription/pgstore"
)

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	opts := append(logger.FromConfig(cfg.Log), logger.WithContextExtractors(requestid.LoggerExtractor()))
	log := logger.New(opts...)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("billing stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.PG.AutoMigrate {
		if err := pg.Migrate(ctx, pool, migrations.FS, cfg.PG, log); err != nil {
			return err
		}
	}

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}

	var lk locker.Locker = locker.NewMemory()
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", logger.Error(err))
			}
		}()
		lk = locker.NewRedis(client, cfg.Lock)
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	} else {
		log.Warn("REDIS_URL is not set, provisioning locks are local to this instance")
	}

	gateway, err := asaas.New(cfg.Asaas, asaas.WithLogger(log))
	if err != nil {
		return err
	}

	svc, err := subscription.NewService(ctx,
		subscription.NewYAMLSource(cfg.Billing.PlansFile),
		gateway,
		pgstore.New(pool),
		subscription.WithLogger(log),
		subscription.WithLocker(lk),
		subscription.WithTrialDays(cfg.Billing.TrialDays),
		subscription.WithQREncoder(qrcode.NewEncoder(qrcode.WithSize(cfg.QRCode.Size))),
	)
	if err != nil {
		return errors.Join(errors.New("failed to start subscription service"), err)
	}

	r := chi.NewRouter()
	r.Get("/livez", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, 2*time.Second, checks...))
	r.Mount("/", billing.Router(billing.RouterOptions{
		Billing:  billing.NewHandler(svc, billing.WithLogger(log)),
		ClientIP: cfg.ClientIP,
	}))

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}
