package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventsphere/cmd/middleware"
	"eventsphere/internal/auth"
	"eventsphere/internal/handler"
)

type Routers struct {
	Handler *handler.Handler
	Tokens  *auth.Manager
	Log     *zerolog.Logger
	// AllowOrigins enables credentialed CORS for the listed origins. Empty
	// means any origin without credentials.
	AllowOrigins []string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware(r.Log))
	app.Use(corsMiddleware(r.AllowOrigins))

	h := r.Handler
	requireAuth := middleware.RequireAuth(r.Tokens)
	optionalAuth := middleware.OptionalAuth(r.Tokens)

	app.GET("/healthz", h.Health)

	apiGroup := app.Group("/v1")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/session", requireAuth, h.Session)

	apiGroup.GET("/events", optionalAuth, h.ListEvents)
	apiGroup.GET("/events/:id", optionalAuth, h.GetEvent)
	apiGroup.POST("/events/:id/register", h.Register)
	apiGroup.GET("/events/:id/certificate", h.CertificateByPhone)
	apiGroup.GET("/events/:id/certificate/:code", h.Certificate)
	apiGroup.GET("/events/:id/tickets/:code/qr", h.TicketQR)

	owner := apiGroup.Group("/events", requireAuth)
	owner.POST("", h.CreateEvent)
	owner.PUT("/:id", h.UpdateEvent)
	owner.DELETE("/:id", h.DeleteEvent)
	owner.POST("/:id/publish", h.PublishEvent)
	owner.PUT("/:id/status", h.SetEventStatus)

	owner.GET("/:id/participants", h.ListParticipants)
	owner.POST("/:id/participants/:code/decision", h.Decide)
	owner.POST("/:id/checkin", h.CheckIn)
	owner.DELETE("/:id/checkin/:code", h.RemoveCheckIn)

	owner.POST("/:id/scan", h.OpenScan)
	owner.GET("/:id/scan/:sid", h.ScanState)
	owner.DELETE("/:id/scan/:sid", h.CloseScan)
	owner.POST("/:id/scan/:sid/frames", h.ScanFrame)
	owner.POST("/:id/scan/:sid/codes", h.ScanCode)
	owner.POST("/:id/scan/:sid/confirm", h.ConfirmScan)
	owner.POST("/:id/scan/:sid/decline", h.DeclineScan)

	return app
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}
