package v1

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/server/service/completion"
)

const (
	sseContentType = "text/event-stream"
	sseDoneFrame   = "data: {\"done\": true}\n\n"
)

// sseWriter writes completion events as SSE frames and flushes each one.
type sseWriter struct {
	response *echo.Response
}

func newSSEWriter(response *echo.Response) *sseWriter {
	header := response.Header()
	header.Set(echo.HeaderContentType, sseContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Accel-Buffering", "no")
	response.WriteHeader(http.StatusOK)
	response.Flush()
	return &sseWriter{response: response}
}

// Emit implements completion.Emitter.
func (w *sseWriter) Emit(event completion.Event) error {
	if _, err := w.response.Write([]byte(encodeFrame(event))); err != nil {
		return err
	}
	w.response.Flush()
	return nil
}

// encodeFrame renders the frame with the exact bytes browser clients expect:
// a space after the colon and non-ASCII text escaped as \uXXXX.
func encodeFrame(event completion.Event) string {
	switch {
	case event.Done:
		return sseDoneFrame
	case event.Error != "":
		return `data: {"error": ` + quoteASCII(event.Error) + "}\n\n"
	default:
		return `data: {"token": ` + quoteASCII(event.Token) + "}\n\n"
	}
}

// quoteASCII quotes s as a JSON string using only ASCII characters.
// Characters outside the BMP are written as UTF-16 surrogate pairs.
func quoteASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r > 0x7e && r < 0x10000):
				writeUnicodeEscape(&b, r)
			case r >= 0x10000:
				r1, r2 := utf16.EncodeRune(r)
				writeUnicodeEscape(&b, r1)
				writeUnicodeEscape(&b, r2)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	hex := strconv.FormatInt(int64(r), 16)
	b.WriteString(`\u`)
	b.WriteString(strings.Repeat("0", 4-len(hex)))
	b.WriteString(hex)
}
