package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/server/internal/observability"
	"github.com/hrygo/lmchat/server/service/completion"
)

type completionRequest struct {
	UserID    *string `json:"user_id"`
	SessionID *string `json:"session_id"`
	Prompt    *string `json:"prompt"`
}

// Completion stores the prompt and streams the model answer as SSE.
// Validation and storage failures are reported as JSON before the stream starts.
// POST /completion
func (s *APIV1Service) Completion(c echo.Context) error {
	request := bindBody[completionRequest](c)
	userID := stringOrDefault(request.UserID, DefaultUserID)
	sessionID := stringOrDefault(request.SessionID, DefaultSessionID)

	reqCtx := observability.NewRequestContextWithID(nil, c.Response().Header().Get(echo.HeaderXRequestID), userID, sessionID)
	if reqCtx.RequestID == "" {
		reqCtx = observability.NewRequestContext(nil, userID, sessionID)
	}
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	run, err := s.CompletionService.Prepare(ctx, &completion.Request{
		UserID:    userID,
		SessionID: sessionID,
		Prompt:    stringOrEmpty(request.Prompt),
	})
	if err != nil {
		return renderError(c, err)
	}

	// Once the stream has started the response is committed; a client that
	// went away is logged by the completion service, not reported here.
	writer := newSSEWriter(c.Response())
	_ = run.Stream(ctx, writer.Emit)
	return nil
}
