package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"dao-governance/config"
	httpHandler "dao-governance/internal/adapter/http/handler"
	"dao-governance/internal/adapter/invoker"
	memStorage "dao-governance/internal/adapter/storage/memory"
	pgStorage "dao-governance/internal/adapter/storage/postgres"
	redisStorage "dao-governance/internal/adapter/storage/redis"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/internal/core/state"
	"dao-governance/internal/service"
	"dao-governance/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("self_principal", cfg.Governance.SelfPrincipal).
		Msg("Starting DAO Governance Engine")

	ctx := context.Background()

	// Durable-state collaborators. Without a database the engine keeps
	// everything in memory and genesis reapplies on every boot.
	var (
		snapStore      ports.SnapshotStore
		memberRepo     ports.MemberRepository
		auditSvc       ports.AuditService
		healthCheckers []ports.HealthChecker
	)
	if cfg.Database.Enabled {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database schema")
		}
		log.Info().Msg("PostgreSQL connected")

		snapStore = pgStorage.NewSnapshotRepo(pool)
		memberRepo = pgStorage.NewMemberRepo(pool)
		auditSvc = service.NewAuditService(pgStorage.NewAuditRepository(pool), log)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	} else {
		log.Warn().Msg("Database disabled, state will not survive a restart")
		snapStore = memStorage.NewSnapshotStore()
		memberRepo = memStorage.NewMemberRepo()
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))

	// Restore governance state, or seed it from genesis on first boot.
	snap, err := snapStore.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load state snapshot")
	}
	if snap == nil {
		snap = genesisSnapshot(cfg.Genesis)
		log.Info().
			Int("accounts", len(snap.Accounts)).
			Msg("Seeding governance state from genesis")
	} else {
		log.Info().
			Int("accounts", len(snap.Accounts)).
			Int("proposals", len(snap.Proposals)).
			Msg("Governance state restored from snapshot")
	}
	st := state.New(snap)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	selfPrincipal := domain.Principal(cfg.Governance.SelfPrincipal)
	authSvc := service.NewAuthService(memberRepo, hashSvc, encSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(st, log)
	govSvc := service.NewGovernanceService(st, selfPrincipal, log)
	proposalInvoker := invoker.NewHTTPInvoker(cfg.Invoker.Targets, &http.Client{Timeout: cfg.Invoker.Timeout}, log)
	executorSvc := service.NewExecutorService(st, proposalInvoker, cfg.Invoker.Timeout, log)
	reportingSvc := service.NewReportingService(st)

	bootstrapGovernor(ctx, cfg.Genesis.Governor, selfPrincipal, memberRepo, authSvc, log)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		GovSvc:         govSvc,
		ExecutorSvc:    executorSvc,
		ReportingSvc:   reportingSvc,
		MemberRepo:     memberRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		SelfPrincipal:  selfPrincipal,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// Periodic snapshot persistence
	snapshotWorker := service.NewSnapshotWorker(st, snapStore, cfg.Governance.SnapshotInterval, log)
	snapshotWorker.Start()

	// Host-driven executor ticks. The engine never schedules itself; this
	// loop is the host's clock.
	tickCtx, stopTicks := context.WithCancel(context.Background())
	var tickWG sync.WaitGroup
	tickWG.Add(1)
	go func() {
		defer tickWG.Done()
		ticker := time.NewTicker(cfg.Governance.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				report, err := executorSvc.ExecuteTick(tickCtx)
				if err != nil {
					log.Error().Err(err).Msg("Executor tick aborted")
					continue
				}
				if report.Claimed > 0 {
					log.Info().
						Int("claimed", report.Claimed).
						Int("succeeded", report.Succeeded).
						Int("failed", report.Failed).
						Msg("Executor tick completed")
				}
			}
		}
	}()

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopTicks()
	tickWG.Wait()

	// Final snapshot before exit
	snapshotWorker.Stop(shutdownCtx)

	log.Info().Msg("Server exited")
}

// genesisSnapshot builds the first-boot state from configuration. The
// initial supply is derived from the seeded balances.
func genesisSnapshot(g config.GenesisConfig) *domain.Snapshot {
	accounts := make([]domain.Account, 0, len(g.Accounts))
	for _, a := range g.Accounts {
		accounts = append(accounts, domain.Account{
			Owner:  domain.Principal(a.Principal),
			Tokens: domain.Tokens(a.Tokens),
		})
	}
	return &domain.Snapshot{
		Accounts: accounts,
		Params: domain.SystemParams{
			TransferFee:               domain.Tokens(g.Params.TransferFee),
			ProposalVoteThreshold:     domain.Tokens(g.Params.VoteThreshold),
			ProposalSubmissionDeposit: domain.Tokens(g.Params.SubmissionDeposit),
		},
	}
}

// bootstrapGovernor registers the genesis governor member on first boot so
// the privileged admin surface is reachable out of the box. The HMAC key
// pair is printed exactly once; it cannot be recovered later.
func bootstrapGovernor(
	ctx context.Context,
	gov config.GenesisGovernor,
	self domain.Principal,
	memberRepo ports.MemberRepository,
	authSvc ports.AuthService,
	log zerolog.Logger,
) {
	if gov.Principal == "" || gov.Username == "" || gov.Password == "" {
		log.Warn().Msg("No genesis governor configured, admin surface has no member")
		return
	}
	if domain.Principal(gov.Principal) != self {
		log.Warn().
			Str("governor", gov.Principal).
			Str("self_principal", self.String()).
			Msg("Genesis governor differs from engine self principal, parameter updates will silently no-op")
	}

	existing, err := memberRepo.GetByPrincipal(ctx, domain.Principal(gov.Principal))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up governor member")
	}
	if existing != nil {
		return
	}

	resp, err := authSvc.RegisterMember(ctx, ports.RegisterMemberRequest{
		Principal: domain.Principal(gov.Principal),
		Username:  gov.Username,
		Password:  gov.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register governor member")
	}

	log.Warn().
		Str("principal", resp.Principal.String()).
		Str("access_key", resp.AccessKey).
		Str("secret_key", resp.SecretKey).
		Msg("Governor member registered, store this key pair now: it is shown only once")
}
