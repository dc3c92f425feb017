package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// queryOrDefault returns the query value when the parameter is present,
// even if it is empty, and def otherwise.
func queryOrDefault(c echo.Context, name, def string) string {
	if values, ok := c.QueryParams()[name]; ok && len(values) > 0 {
		return values[0]
	}
	return def
}

// queryInt parses an integer query parameter, returning def when it is absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw, ok := c.QueryParams()[name]
	if !ok || len(raw) == 0 {
		return def, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw[0])
	}
	return value, nil
}

// bindBody decodes a JSON object body. A missing or malformed body yields
// the zero value, so handlers fall back to their defaults.
func bindBody[T any](c echo.Context) T {
	var body T
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil || len(raw) == 0 {
		return body
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		var zero T
		return zero
	}
	return body
}

func stringOrDefault(value *string, def string) string {
	if value == nil {
		return def
	}
	return *value
}

func stringOrEmpty(value *string) string {
	return stringOrDefault(value, "")
}
