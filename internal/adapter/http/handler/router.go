package handler

import (
	"nps-merchant-gateway/internal/adapter/http/middleware"
	redisStore "nps-merchant-gateway/internal/adapter/storage/redis"
	"nps-merchant-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CredentialSvc  ports.CredentialService
	PaymentSvc     ports.PaymentService
	AuthSvc        ports.AuthService          // nil = /admin/login not mounted
	TokenSvc       ports.TokenService         // nil = credential routes unauthenticated
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	AuditSvc       ports.AuditService         // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	if deps.AuthSvc != nil {
		authHandler := NewAuthHandler(deps.AuthSvc)
		r.POST("/admin/login", rl(middleware.GroupLogin), authHandler.Login)
	}

	// --- Credential management (admin) ---
	admin := []gin.HandlerFunc{rl(middleware.GroupAdmin)}
	if deps.TokenSvc != nil {
		admin = append(admin, middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	}
	credHandler := NewCredentialHandler(deps.CredentialSvc)
	creds := r.Group("/npspayment", admin...)
	{
		creds.POST("/", credHandler.Create)
		creds.GET("/", credHandler.List)
		creds.GET("/:id/", credHandler.Get)
		creds.PUT("/:id/", credHandler.Replace)
		creds.PATCH("/:id/", credHandler.Patch)
	}

	// --- Gateway proxy ---
	npsHandler := NewNPSHandler(deps.PaymentSvc)
	proxy := r.Group("", rl(middleware.GroupProxy))
	{
		proxy.POST("/payment-instruments/", npsHandler.PaymentInstruments)
		proxy.POST("/service-charge/", npsHandler.ServiceCharge)
		proxy.POST("/process-id/", npsHandler.ProcessID)
		proxy.POST("/notification/", npsHandler.Notification)
	}
	r.GET("/notification/", rl(middleware.GroupCallback), npsHandler.Callback)

	return r
}
