package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/store"
)

type createSessionRequest struct {
	UserID *string `json:"user_id"`
	Title  *string `json:"title"`
}

type renameSessionRequest struct {
	Title *string `json:"title"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

type sessionListItem struct {
	SessionID string  `json:"session_id"`
	Title     string  `json:"title"`
	CreatedAt float64 `json:"created_at"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CreateSession creates a session for the body's user_id.
// POST /sessions
func (s *APIV1Service) CreateSession(c echo.Context) error {
	request := bindBody[createSessionRequest](c)

	session, err := s.SessionService.Create(c.Request().Context(),
		stringOrDefault(request.UserID, DefaultUserID),
		stringOrEmpty(request.Title))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionResponse{SessionID: session.SessionID, Title: session.Title})
}

// ListSessions returns one page of the user's sessions, newest first.
// GET /sessions?user_id=&page=&size=
func (s *APIV1Service) ListSessions(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return badRequest(c, err)
	}
	size, err := queryInt(c, "size", store.DefaultSessionPageSize)
	if err != nil {
		return badRequest(c, err)
	}

	sessions, err := s.SessionService.List(c.Request().Context(), queryOrDefault(c, "user_id", DefaultUserID), page, size)
	if err != nil {
		return renderError(c, err)
	}

	response := make([]sessionListItem, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, sessionListItem{
			SessionID: session.SessionID,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// RenameSession replaces the session title.
// PATCH /sessions/:session_id?user_id=
func (s *APIV1Service) RenameSession(c echo.Context) error {
	request := bindBody[renameSessionRequest](c)

	session, err := s.SessionService.Rename(c.Request().Context(),
		queryOrDefault(c, "user_id", DefaultUserID),
		c.Param("session_id"),
		stringOrEmpty(request.Title))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{SessionID: session.SessionID, Title: session.Title})
}

// DeleteSession deletes the session and its messages.
// DELETE /sessions/:session_id?user_id=
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	if err := s.SessionService.Delete(c.Request().Context(),
		queryOrDefault(c, "user_id", DefaultUserID),
		c.Param("session_id")); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}
