package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/quizarena/server/internal/catalog"
	"github.com/quizarena/server/internal/errors"
	"github.com/quizarena/server/internal/event"
	"github.com/quizarena/server/internal/game"
	"github.com/quizarena/server/internal/gateway"
	"github.com/quizarena/server/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Redis struct {
		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}

	Postgres struct {
		Catalog struct {
			Addr string
			User string
			Pass string
			Name string
		}
	}

	Game struct {
		Categories []string
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			pubsub redis.UniversalClient
		}

		postgres struct {
			catalog *pgxpool.Pool
		}
	}

	service struct {
		catalog  *catalog.Service
		registry *game.Registry
	}

	gateway *gateway.Gateway
	http    *http.Server

	relayCtx    context.Context
	relayCancel context.CancelFunc
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()
	s.relayCtx, s.relayCancel = context.WithCancel(context.Background())

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    s.c.Redis.Pubsub.Addrs,
		Password: s.c.Redis.Pubsub.Pass,
	})

	if err := telemetry.MonitorRedis(r); err != nil {
		return err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		return err
	}

	s.infra.redis.pubsub = r
	return nil
}

func (s *Server) initPostgres() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc := s.c.Postgres.Catalog
	pc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", cc.User, cc.Pass, cc.Addr, cc.Name))
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return err
	}

	if err := db.Ping(ctx); err != nil {
		return err
	}

	s.infra.postgres.catalog = db
	return nil
}

func (s *Server) initService() {
	s.service.catalog = catalog.NewService(catalog.Config{
		DB: s.infra.postgres.catalog,
	})

	s.service.registry = game.NewRegistry(game.Config{
		Catalog:    s.service.catalog,
		EventBus:   s.eb,
		Categories: s.c.Game.Categories,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	s.gateway = gateway.New(gateway.Config{
		Registry: s.service.registry,
		EventBus: s.eb,
		Redis:    s.infra.redis.pubsub,
		Prefix:   s.c.Redis.Pubsub.Prefix,
	})

	e.GET("/ws", s.gateway.Handle)
	e.GET("/api/health", s.handleHealth)
	e.GET("/api/games", s.handleListGames)
	e.DELETE("/api/games/:code", s.handleRemoveGame)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Quiz Arena backend running",
		"games":   s.service.registry.Count(),
	})
}

func (s *Server) handleListGames(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.registry.ListSessions())
}

func (s *Server) handleRemoveGame(c *gin.Context) {
	if err := s.service.registry.RemoveSession(c.Request.Context(), c.Param("code")); err != nil {
		e := errors.Convert(err)
		c.JSON(e.HTTPStatusCode(), e)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) Start() {
	ctx := s.relayCtx

	var eg errgroup.Group
	eg.Go(func() error {
		return s.gateway.Run(ctx)
	})

	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.relayCancel()
	s.eb.Stop()

	s.infra.postgres.catalog.Close()
	if err := s.infra.redis.pubsub.Close(); err != nil {
		slog.ErrorContext(ctx, "server: close redis failed", "error", err)
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}
