package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStream(body string) *StreamReader {
	_, cancel := context.WithCancel(context.Background())
	return newStreamReader(io.NopCloser(strings.NewReader(body)), cancel, time.Minute)
}

func TestStreamReaderSkipsInvalidFrames(t *testing.T) {
	body := strings.Join([]string{
		": keep-alive",
		"",
		"event: message",
		"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}",
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}",
		"data: {not json}",
		"data: {\"choices\":[]}",
		"{\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}",
		"data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}",
		"data: [DONE]",
		"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}",
	}, "\n")

	stream := newTestStream(body)
	defer stream.Close()
	require.Equal(t, []string{"Hel", "lo"}, collect(t, stream))

	// Recv keeps returning EOF after the end.
	_, err := stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamReaderBodyEndsWithoutDone(t *testing.T) {
	stream := newTestStream("data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}")
	defer stream.Close()
	require.Equal(t, []string{"partial"}, collect(t, stream))
}

func TestStreamReaderCRLF(t *testing.T) {
	stream := newTestStream("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\r\n\r\ndata: [DONE]\r\n")
	defer stream.Close()
	require.Equal(t, []string{"x"}, collect(t, stream))
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestStreamReaderReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	_, cancel := context.WithCancel(context.Background())
	stream := newStreamReader(io.NopCloser(&failingReader{
		data: "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n",
		err:  readErr,
	}), cancel, time.Minute)
	defer stream.Close()

	token, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "a", token)

	_, err = stream.Recv()
	require.ErrorIs(t, err, readErr)
}

func TestModelHolder(t *testing.T) {
	holder := &ModelHolder{}
	_, ok := holder.Get()
	require.False(t, ok)

	calls := 0
	detect := func(context.Context) (string, error) {
		calls++
		return "m1", nil
	}
	id, err := holder.Resolve(context.Background(), detect)
	require.NoError(t, err)
	require.Equal(t, "m1", id)

	id, err = holder.Resolve(context.Background(), detect)
	require.NoError(t, err)
	require.Equal(t, "m1", id)
	require.Equal(t, 1, calls)

	failing := &ModelHolder{}
	_, err = failing.Resolve(context.Background(), func(context.Context) (string, error) {
		return "", ErrNoModel
	})
	require.ErrorIs(t, err, ErrNoModel)
	_, ok = failing.Get()
	require.False(t, ok)
}

func TestSystemInstruction(t *testing.T) {
	require.Equal(t, DefaultSystemInstruction, SystemInstruction(""))
	require.Equal(t, "custom", SystemInstruction("custom"))
}
