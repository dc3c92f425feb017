package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/store"
)

type historyItem struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// GetHistory returns one page of messages in chronological order.
// GET /history?user_id=&session_id=&page=&size=
func (s *APIV1Service) GetHistory(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return badRequest(c, err)
	}
	size, err := queryInt(c, "size", store.DefaultMessagePageSize)
	if err != nil {
		return badRequest(c, err)
	}

	messages, err := s.HistoryService.List(c.Request().Context(),
		queryOrDefault(c, "user_id", DefaultUserID),
		queryOrDefault(c, "session_id", DefaultSessionID),
		page, size)
	if err != nil {
		return renderError(c, err)
	}

	response := make([]historyItem, 0, len(messages))
	for _, message := range messages {
		response = append(response, historyItem{Sender: string(message.Sender), Text: message.Text})
	}
	return c.JSON(http.StatusOK, response)
}

// ClearHistory deletes every message of the session.
// DELETE /history?user_id=&session_id=
func (s *APIV1Service) ClearHistory(c echo.Context) error {
	userID := queryOrDefault(c, "user_id", DefaultUserID)
	sessionID := queryOrDefault(c, "session_id", DefaultSessionID)

	if err := s.HistoryService.Clear(c.Request().Context(), userID, sessionID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Histórico limpo para %s/%s", userID, sessionID),
	})
}
