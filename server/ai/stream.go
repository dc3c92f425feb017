package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	dataPrefix = []byte("data: ")
	doneMarker = []byte("[DONE]")
)

// Stream yields content deltas of a streaming chat completion.
// Recv returns io.EOF once the upstream signals the end.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// StreamReader parses the upstream SSE body line by line.
type StreamReader struct {
	reader *bufio.Reader
	body   io.Closer
	cancel context.CancelFunc
	timer  *time.Timer
	done   bool
}

func newStreamReader(body io.ReadCloser, cancel context.CancelFunc, idleTimeout time.Duration) *StreamReader {
	timer := time.AfterFunc(idleTimeout, cancel)
	return &StreamReader{
		reader: bufio.NewReader(&idleTimeoutReader{r: body, timer: timer, timeout: idleTimeout}),
		body:   body,
		cancel: cancel,
		timer:  timer,
	}
}

// Recv returns the next non-empty content delta. Frames that are not valid
// completion chunks are skipped.
func (s *StreamReader) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		line, readErr := s.reader.ReadBytes('\n')
		if delta, done := parseLine(line); done {
			s.done = true
			return "", io.EOF
		} else if delta != "" {
			return delta, nil
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				s.done = true
				return "", io.EOF
			}
			return "", readErr
		}
	}
}

// Close stops the idle timer and releases the connection.
func (s *StreamReader) Close() error {
	s.timer.Stop()
	s.cancel()
	return s.body.Close()
}

// parseLine extracts the content delta from one SSE line.
func parseLine(line []byte) (delta string, done bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", false
	}
	line = bytes.TrimPrefix(line, dataPrefix)
	if bytes.Equal(bytes.TrimSpace(line), doneMarker) {
		return "", true
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal(line, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, false
}

// idleTimeoutReader restarts the timer before every read, so the timer only
// fires when the upstream stays silent for the whole timeout.
type idleTimeoutReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (r *idleTimeoutReader) Read(p []byte) (int, error) {
	r.timer.Reset(r.timeout)
	return r.r.Read(p)
}
