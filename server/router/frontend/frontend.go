package frontend

import (
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/internal/profile"
)

// IndexFile is the page served at the root path.
const IndexFile = "index.html"

type FrontendService struct {
	Profile *profile.Profile
}

func NewFrontendService(profile *profile.Profile) *FrontendService {
	return &FrontendService{Profile: profile}
}

// Serve registers GET / for the chat page in the public directory.
// A missing file yields 404.
func (s *FrontendService) Serve(e *echo.Echo) {
	index := filepath.Join(s.Profile.PublicDir, IndexFile)
	e.GET("/", func(c echo.Context) error {
		return c.File(index)
	})
}
