package v1

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/lmchat/internal/profile"
	"github.com/hrygo/lmchat/server/internal/observability"
	"github.com/hrygo/lmchat/server/service/completion"
	"github.com/hrygo/lmchat/server/service/history"
	"github.com/hrygo/lmchat/server/service/session"
	"github.com/hrygo/lmchat/store"
)

// Defaults applied when a request omits user_id or session_id.
const (
	DefaultUserID    = "default"
	DefaultSessionID = "default"
)

type APIV1Service struct {
	Profile           *profile.Profile
	Store             *store.Store
	SessionService    session.Service
	HistoryService    history.Service
	CompletionService *completion.Service
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, completionService *completion.Service) *APIV1Service {
	return &APIV1Service{
		Profile:           profile,
		Store:             store,
		SessionService:    session.NewService(store),
		HistoryService:    history.NewService(store),
		CompletionService: completionService,
	}
}

// RegisterRoutes registers the JSON, SSE and operational routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	api := echoServer.Group("", middleware.CORS())

	api.POST("/sessions", s.CreateSession)
	api.GET("/sessions", s.ListSessions)
	api.PATCH("/sessions/:session_id", s.RenameSession)
	api.DELETE("/sessions/:session_id", s.DeleteSession)

	api.GET("/history", s.GetHistory)
	api.DELETE("/history", s.ClearHistory)

	api.POST("/completion", s.Completion)

	echoServer.GET("/healthz", s.Healthz)
	echoServer.GET("/metrics", echo.WrapHandler(observability.MetricsHandler()))
}
