package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/account"
	"github.com/PaulBabatuyi/chater/internal/messenger"
	"github.com/PaulBabatuyi/chater/internal/middleware"
)

// Server holds the services behind the HTTP routes.
type Server struct {
	accounts  *account.Service
	messenger *messenger.Service
	limiter   *middleware.LimiterStore
	socket    http.Handler
	log       *slog.Logger

	cookieSecure bool
	cookieTTL    time.Duration
}

// newServer returns a ready-to-use Server wired with services and the socket endpoint.
func newServer(accounts *account.Service, msgr *messenger.Service, limiter *middleware.LimiterStore, socket http.Handler, log *slog.Logger) *Server {
	return &Server{
		accounts:  accounts,
		messenger: msgr,
		limiter:   limiter,
		socket:    socket,
		log:       log,
		cookieTTL: 30 * 24 * time.Hour,
	}
}

// routes builds the gin engine.
func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(), middleware.Recovery(s.log), middleware.Logger(s.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/socket", gin.WrapH(s.socket))

	requireAuth := middleware.RequireAuth(s.accounts)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/registrate", middleware.RateLimit(s.limiter), s.registrate)
	authGroup.POST("/login", middleware.RateLimit(s.limiter), s.login)
	authGroup.POST("/logout", requireAuth, s.logout)

	msgr := api.Group("/messenger")
	msgr.GET("/dialog/public", s.publicDialog)
	msgr.GET("/dialog/private", requireAuth, s.findPrivateDialog)
	msgr.POST("/dialog/private", requireAuth, s.createPrivateDialog)
	msgr.GET("/dialogs/private", requireAuth, s.privateDialogs)
	msgr.GET("/dialog", s.dialog)
	msgr.GET("/messages", s.messages)
	msgr.POST("/message/public", requireAuth, s.postPublicMessage)
	msgr.POST("/message/private", requireAuth, s.postPrivateMessage)

	users := api.Group("/users")
	users.GET("/user", s.user)
	users.GET("/users", s.users)
	users.GET("/search", s.search)

	return r
}
