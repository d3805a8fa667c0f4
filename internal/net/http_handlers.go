package net

import (
	"context"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evymii/ard-arena/internal/results"
	"github.com/evymii/ard-arena/internal/session"
	"github.com/evymii/ard-arena/internal/telemetry"
	"github.com/evymii/ard-arena/logging"
)

// EventStats reports gameplay event router totals.
type EventStats interface {
	Stats() logging.RouterStats
}

type HTTPHandlerConfig struct {
	Registry *session.Registry
	// History is optional; without it /sessions/history answers 503.
	History  results.Repository
	Counters *telemetry.Counters
	Events   EventStats
	// WS serves /ws.
	WS     nethttp.HandlerFunc
	Logger telemetry.Logger
	Debug  bool
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	router.GET("/health", func(c *gin.Context) {
		c.String(nethttp.StatusOK, "ok")
	})

	router.GET("/diagnostics", func(c *gin.Context) {
		payload := gin.H{
			"status":     "ok",
			"serverTime": time.Now().UnixMilli(),
			"sessions":   len(cfg.Registry.List()),
			"counters":   cfg.Counters.Snapshot(),
		}
		if cfg.Events != nil {
			stats := cfg.Events.Stats()
			payload["events"] = gin.H{"total": stats.EventsTotal, "dropped": stats.DroppedTotal}
		}
		c.JSON(nethttp.StatusOK, payload)
	})

	router.GET("/sessions", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"sessions": cfg.Registry.List()})
	})

	router.GET("/sessions/history", func(c *gin.Context) {
		if cfg.History == nil {
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{"error": "history disabled"})
			return
		}
		limit := 50
		if s := c.Query("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		records, err := cfg.History.Recent(ctx, limit)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Printf("session history: %v", err)
			}
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
			return
		}
		c.JSON(nethttp.StatusOK, gin.H{"sessions": records})
	})

	if cfg.WS != nil {
		router.GET("/ws", gin.WrapF(cfg.WS))
	}
	return router
}
