package handler

import (
	"dao-governance/internal/adapter/http/middleware"
	redisStore "dao-governance/internal/adapter/storage/redis"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	GovSvc         ports.GovernanceService
	ExecutorSvc    ports.ExecutorService
	ReportingSvc   ports.ReportingService
	MemberRepo     ports.MemberRepository
	EncSvc         ports.EncryptionService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	TokenSvc       ports.TokenService
	SelfPrincipal  domain.Principal
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditTrail(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	authHandler := NewAuthHandler(deps.AuthSvc)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	govHandler := NewGovernanceHandler(deps.GovSvc)
	adminHandler := NewAdminHandler(deps.GovSvc, deps.AuthSvc, deps.ExecutorSvc, deps.ReportingSvc)

	// --- Public routes (no auth) ---
	v1.POST("/auth/login", rl("auth_login"), authHandler.Login)
	v1.GET("/proposals", rl("queries"), govHandler.ListProposals)
	v1.GET("/proposals/:id", rl("queries"), govHandler.GetProposal)
	v1.GET("/params", rl("queries"), govHandler.GetParams)
	v1.GET("/ledger/accounts", rl("queries"), ledgerHandler.ListAccounts)

	// --- HMAC-authenticated routes (signed member API) ---
	hmacAuth := middleware.HMACAuth(deps.MemberRepo, deps.EncSvc, deps.SigSvc, deps.NonceStore, deps.Logger)
	v1.POST("/ledger/transfers", hmacAuth, rl("transfers"), ledgerHandler.Transfer)
	v1.POST("/proposals", hmacAuth, rl("proposals"), govHandler.SubmitProposal)
	v1.POST("/proposals/:id/votes", hmacAuth, rl("votes"), govHandler.Vote)

	// --- JWT-authenticated routes (session API) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1.GET("/ledger/balance", jwtAuth, rl("queries"), ledgerHandler.Balance)

	// --- Admin surface (JWT-authenticated) ---
	// Parameter patches and state overrides take any caller: the service
	// applies them only for the engine's own principal and no-ops
	// otherwise. The remaining operational routes are self-only.
	admin := v1.Group("/admin", jwtAuth)
	{
		admin.PATCH("/params", rl("admin"), adminHandler.UpdateParams)
		admin.PUT("/proposals/:id/state", rl("admin"), adminHandler.OverrideProposalState)

		selfOnly := middleware.RequireSelf(deps.SelfPrincipal)
		admin.POST("/members", selfOnly, rl("admin"), adminHandler.RegisterMember)
		admin.POST("/tick", selfOnly, rl("admin"), adminHandler.Tick)
		admin.GET("/ledger/stats", selfOnly, rl("admin"), adminHandler.LedgerStats)
		admin.GET("/proposals/export", selfOnly, rl("admin"), adminHandler.ExportProposals)
	}

	return r
}
