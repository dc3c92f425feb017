package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

// Healthz reports liveness, the server version and the cached model id.
// It never triggers model discovery.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	model, _ := s.CompletionService.Models().Get()
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.Profile.Version,
		Model:   model,
	})
}
