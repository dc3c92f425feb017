// Package completion runs the streaming completion pipeline: it stores the
// user prompt, relays upstream tokens to an Emitter and stores the assembled
// answer before the final event.
package completion

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/hrygo/lmchat/server/ai"
	"github.com/hrygo/lmchat/server/internal/errors"
	"github.com/hrygo/lmchat/server/internal/observability"
	"github.com/hrygo/lmchat/store"
)

// Client-facing messages.
const (
	MsgNoModel         = "Nenhum modelo disponível"
	MsgPromptRequired  = "Campo 'prompt' é obrigatório"
	MsgUpstreamFailure = "Model request failed"
)

// ChatClient is the upstream model server.
type ChatClient interface {
	DetectModel(ctx context.Context) (string, error)
	ChatStream(ctx context.Context, req *ai.ChatRequest) (ai.Stream, error)
}

// Store is the interface for store operations needed by the completion service.
type Store interface {
	CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error)
	SetSessionTitleIfEmpty(ctx context.Context, userID, sessionID, seed string) error
}

// Request is a completion request after the HTTP defaults are applied.
type Request struct {
	UserID    string
	SessionID string
	Prompt    string
}

// Event is one frame of the completion stream. Exactly one field is set.
type Event struct {
	Token string
	Error string
	Done  bool
}

// Emitter delivers an event to the client. A non-nil error means the client is gone.
type Emitter func(Event) error

// Service prepares and runs completions.
type Service struct {
	store        Store
	client       ChatClient
	models       *ai.ModelHolder
	systemPrompt string
}

// NewService creates a completion service. An empty systemPrompt selects the default instruction.
func NewService(store Store, client ChatClient, models *ai.ModelHolder, systemPrompt string) *Service {
	return &Service{
		store:        store,
		client:       client,
		models:       models,
		systemPrompt: ai.SystemInstruction(systemPrompt),
	}
}

// Models returns the shared model id holder.
func (s *Service) Models() *ai.ModelHolder {
	return s.models
}

// Run is a prepared completion whose user message is already stored.
type Run struct {
	service *Service
	model   string
	request Request
	reqCtx  *observability.RequestContext
}

// Prepare resolves the model, validates the prompt and stores the user
// message. Errors returned here are reported before any stream byte.
func (s *Service) Prepare(ctx context.Context, req *Request) (*Run, error) {
	model, err := s.models.Resolve(ctx, s.client.DetectModel)
	if err != nil {
		return nil, errors.ModelUnavailable(MsgNoModel, err)
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.InvalidArgument(MsgPromptRequired)
	}

	if _, err := s.store.CreateMessage(ctx, &store.Message{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Sender:    store.SenderUser,
		Text:      prompt,
	}); err != nil {
		return nil, errors.Internal("failed to save message", err)
	}
	if err := s.store.SetSessionTitleIfEmpty(ctx, req.UserID, req.SessionID, prompt); err != nil {
		return nil, errors.Internal("failed to set session title", err)
	}

	reqCtx, ok := observability.FromContext(ctx)
	if !ok {
		reqCtx = observability.NewRequestContext(slog.Default(), req.UserID, req.SessionID)
	}

	return &Run{
		service: s,
		model:   model,
		request: Request{UserID: req.UserID, SessionID: req.SessionID, Prompt: prompt},
		reqCtx:  reqCtx,
	}, nil
}

// Stream relays the upstream answer through emit and always ends with a Done
// event, unless the client goes away. A canceled ctx or a failing emit stops
// the stream without storing the answer; the returned error is then non-nil.
func (r *Run) Stream(ctx context.Context, emit Emitter) error {
	defer observability.StreamStarted()()

	text, tokens, upstreamErr := r.relay(ctx, emit)
	if upstreamErr != nil && (ctx.Err() != nil || stderrors.Is(upstreamErr, errClientGone)) {
		r.finish(observability.CompletionCanceled, tokens)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return upstreamErr
	}

	result := observability.CompletionOK
	if upstreamErr != nil {
		r.reqCtx.Error("upstream request failed", upstreamErr, slog.String(observability.LogFieldModel, r.model))
		result = observability.CompletionUpstreamError
		if err := emit(Event{Error: MsgUpstreamFailure}); err != nil {
			r.finish(observability.CompletionCanceled, tokens)
			return err
		}
	}

	if strings.TrimSpace(text) != "" {
		if _, err := r.service.store.CreateMessage(ctx, &store.Message{
			UserID:    r.request.UserID,
			SessionID: r.request.SessionID,
			Sender:    store.SenderAI,
			Text:      text,
		}); err != nil {
			r.reqCtx.Error("failed to save answer", err)
		}
	} else if result == observability.CompletionOK {
		result = observability.CompletionEmpty
		r.reqCtx.Warn("model returned an empty answer", slog.String(observability.LogFieldModel, r.model))
	}

	r.finish(result, tokens)
	return emit(Event{Done: true})
}

var errClientGone = stderrors.New("client disconnected")

// relay copies upstream deltas to emit and returns the assembled text.
func (r *Run) relay(ctx context.Context, emit Emitter) (string, int, error) {
	stream, err := r.service.client.ChatStream(ctx, &ai.ChatRequest{
		Model:        r.model,
		SystemPrompt: r.service.systemPrompt,
		Prompt:       r.request.Prompt,
	})
	if err != nil {
		return "", 0, err
	}
	defer stream.Close()

	var (
		builder strings.Builder
		tokens  int
	)
	for {
		delta, err := stream.Recv()
		if stderrors.Is(err, io.EOF) {
			return builder.String(), tokens, nil
		}
		if err != nil {
			return builder.String(), tokens, err
		}

		builder.WriteString(delta)
		tokens++
		if err := emit(Event{Token: delta}); err != nil {
			return builder.String(), tokens, stderrors.Join(errClientGone, err)
		}
	}
}

func (r *Run) finish(result string, tokens int) {
	observability.RecordCompletion(result, tokens)
	r.reqCtx.Info("completion finished",
		slog.String(observability.LogFieldModel, r.model),
		slog.String(observability.LogFieldResult, result),
		slog.Int(observability.LogFieldTokens, tokens),
		slog.Int64(observability.LogFieldDuration, r.reqCtx.DurationMs()),
	)
}
