// Command server runs the attestation oracle and transfer gate as one
// process: consensus and registry endpoints for attestors, profile management
// for compliance officers, and the authorize endpoint for the token ledger.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	compliancehandler "surety/internal/compliance/handler"
	compliancemetrics "surety/internal/compliance/metrics"
	complianceports "surety/internal/compliance/ports"
	profileservice "surety/internal/compliance/service/profile"
	profilestore "surety/internal/compliance/store/profile"
	volumestore "surety/internal/compliance/store/volume"
	oraclehandler "surety/internal/oracle/handler"
	oraclemetrics "surety/internal/oracle/metrics"
	"surety/internal/oracle/service/consensus"
	"surety/internal/oracle/service/freshness"
	"surety/internal/oracle/service/registry"
	"surety/internal/oracle/service/slashing"
	attestorstore "surety/internal/oracle/store/attestor"
	freshnessstore "surety/internal/oracle/store/freshness"
	roundstore "surety/internal/oracle/store/round"
	"surety/internal/platform/config"
	"surety/internal/platform/httpserver"
	"surety/internal/platform/logger"
	"surety/internal/platform/postgres"
	platformredis "surety/internal/platform/redis"
	"surety/internal/transfer"
	transferhandler "surety/internal/transfer/handler"
	transfermetrics "surety/internal/transfer/metrics"
	httptransport "surety/internal/transport/http"
	"surety/pkg/platform/audit/publisher"
	auditmemory "surety/pkg/platform/audit/store/memory"
	auditworker "surety/pkg/platform/audit/worker"
	"surety/pkg/platform/middleware/auth"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Backing stores. Either durable pair may be absent in development;
	// the in-memory fallbacks keep the process self-contained.
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		attestors consensus.AttestorStore
		profiles  profileservice.Store
		records   consensus.FreshnessStore
		volumes   complianceports.VolumeStore
	)
	if db != nil {
		attestors = attestorstore.NewPostgres(db)
		profiles = profilestore.NewPostgres(db)
		records = freshnessstore.NewPostgres(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		attestors = attestorstore.NewInMemoryStore()
		profiles = profilestore.NewInMemoryStore()
		records = freshnessstore.NewInMemoryStore()
	}
	if redisClient != nil {
		volumes = volumestore.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis URL configured, using in-memory volume counters")
		volumes = volumestore.NewInMemoryStore()
	}
	rounds := roundstore.NewInMemoryStore()

	// Audit pipeline: an in-process trail always, Kafka when configured.
	trail := auditmemory.NewInMemoryStore()
	channel := publisher.NewChannel(256, log)
	worker := auditworker.NewWorker(trail, channel.Inbox())
	sinks := publisher.Fanout{channel}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := publisher.NewKafka(cfg.Kafka.Brokers,
			publisher.WithLogger(log),
			publisher.WithTopicPrefix(cfg.Kafka.TopicPrefix),
		)
		if err != nil {
			return err
		}
		defer kafka.Close()
		sinks = append(sinks, kafka)
	} else {
		log.Warn("no kafka brokers configured, audit events stay in-process")
	}

	oracleMetrics := oraclemetrics.New()
	complianceMetrics := compliancemetrics.New()
	transferMetrics := transfermetrics.New()

	registrySvc, err := registry.New(attestors, cfg.Oracle.MinStake,
		registry.WithLogger(log),
		registry.WithAuditPublisher(sinks),
	)
	if err != nil {
		return err
	}
	consensusSvc, err := consensus.New(attestors, rounds, records, consensus.Config{
		QuorumThreshold: cfg.Oracle.QuorumThreshold,
		ToleranceBps:    cfg.Oracle.ToleranceBps,
		RoundTTL:        cfg.Oracle.RoundTTL,
		MaxDropBps:      cfg.Oracle.MaxDropBps,
	},
		consensus.WithLogger(log),
		consensus.WithAuditPublisher(sinks),
		consensus.WithMetrics(oracleMetrics),
	)
	if err != nil {
		return err
	}
	freshnessSvc, err := freshness.New(records, cfg.Oracle.MaxValuationAge,
		freshness.WithLogger(log),
	)
	if err != nil {
		return err
	}
	slashingSvc, err := slashing.New(attestors,
		slashing.WithLogger(log),
		slashing.WithAuditPublisher(sinks),
		slashing.WithMetrics(oracleMetrics),
	)
	if err != nil {
		return err
	}
	profileSvc, err := profileservice.New(profiles, cfg.Gate.IdentityValidity,
		profileservice.WithLogger(log),
		profileservice.WithAuditPublisher(sinks),
	)
	if err != nil {
		return err
	}
	transferSvc, err := transfer.NewService(freshnessSvc, profiles, volumes, transfer.PolicyConfig{
		IdentityValidity:      cfg.Gate.IdentityValidity,
		ProtectedJurisdiction: cfg.Gate.ProtectedJurisdiction,
		OffshoreWindow:        cfg.Gate.OffshoreWindow,
	},
		transfer.WithLogger(log),
		transfer.WithAuditPublisher(sinks),
		transfer.WithMetrics(transferMetrics),
	)
	if err != nil {
		return err
	}

	health := map[string]httptransport.HealthChecker{}
	if db != nil {
		health["postgres"] = db.PingContext
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}

	router := httptransport.New(httptransport.Deps{
		Oracle:     oraclehandler.New(registrySvc, consensusSvc, freshnessSvc, slashingSvc, log),
		Compliance: compliancehandler.New(profileSvc, log, complianceMetrics),
		Transfer:   transferhandler.New(transferSvc, log),
		AuditTrail: trail,
		Verifier:   auth.NewVerifier(cfg.JWTSigningKey),
		Logger:     log,
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
