package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/adapters/signal"
	"github.com/dkeye/Signal/internal/app/orch"
	"github.com/dkeye/Signal/internal/config"
	"github.com/dkeye/Signal/internal/sanitize"
)

const (
	sessionRoomKey = "room"
	sessionNameKey = "name"
)

var notFoundBody = gin.H{"data": "404 not found"}

func noSniff() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug().
			Str("module", "adapters.http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, notFoundBody)
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ctrl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery(), noSniff(), requestLogger())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("SignalSessions", store))

	clientPage := filepath.Join(cfg.StaticPath, "html", "client.html")
	homePage := filepath.Join(cfg.StaticPath, "html", "home.html")

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(clientPage)
	})
	r.GET("/room", func(c *gin.Context) {
		c.File(homePage)
	})
	// /join?room=<channel>&name=<display name>
	r.GET("/join", func(c *gin.Context) {
		room := sanitize.String(c.Query("room"))
		name := sanitize.String(c.Query("name"))
		if room == "" || name == "" {
			notFound(c)
			return
		}
		sess := sessions.Default(c)
		sess.Set(sessionRoomKey, room)
		sess.Set(sessionNameKey, name)
		if err := sess.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		}
		c.File(clientPage)
	})
	r.NoRoute(notFound)

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Registry.RoomSnapshot()})
	})
	api.GET("/profile", func(c *gin.Context) {
		sess := sessions.Default(c)
		room, _ := sess.Get(sessionRoomKey).(string)
		name, _ := sess.Get(sessionNameKey).(string)
		c.JSON(http.StatusOK, gin.H{"room": room, "name": name})
	})
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
