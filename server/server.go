package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/lmchat/internal/profile"
	"github.com/hrygo/lmchat/server/ai"
	"github.com/hrygo/lmchat/server/internal/observability"
	lmmiddleware "github.com/hrygo/lmchat/server/middleware"
	apiv1 "github.com/hrygo/lmchat/server/router/api/v1"
	"github.com/hrygo/lmchat/server/router/frontend"
	"github.com/hrygo/lmchat/server/service/completion"
	"github.com/hrygo/lmchat/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	provider   *ai.Provider
	models     *ai.ModelHolder
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Store:   store,
		Profile: profile,
		provider: ai.NewProvider(&ai.Config{
			BaseURL: profile.LMStudioBase,
		}),
		models: &ai.ModelHolder{},
	}

	observability.InitMetrics()

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(lmmiddleware.Metrics())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))
	s.echoServer = echoServer

	// Best-effort discovery so the first completion does not wait for it.
	discoverCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if model, err := s.models.Resolve(discoverCtx, s.provider.DetectModel); err == nil {
		slog.Info("model detected", slog.String("model", model), slog.String("base", s.provider.BaseURL()))
	}

	completionService := completion.NewService(store, s.provider, s.models, profile.SystemPrompt)
	apiV1Service := apiv1.NewAPIV1Service(s.Profile, s.Store, completionService)
	apiV1Service.RegisterRoutes(echoServer)

	frontend.NewFrontendService(profile).Serve(echoServer)

	return s, nil
}

// Start listens on the profile address and serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.Profile.ListenAddr())
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	slog.Info("server started", slog.String("addr", listener.Addr().String()), slog.String("mode", s.Profile.Mode))
	if err := s.echoServer.Start(s.Profile.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start echo server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly")
}

// Handler exposes the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}
