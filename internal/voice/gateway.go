package voice

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mockmate-ai/mockmate/internal/interview"
	"github.com/mockmate-ai/mockmate/internal/models"
)

// ChunkStore persists per-chunk processing state. Satisfied by the
// Mongo utterance buffer repository.
type ChunkStore interface {
	InsertChunk(ctx context.Context, b *models.UtteranceBuffer) error
	UpdateSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error
	UpdateReply(ctx context.Context, sessionID string, chunkIndex int64, reply string, status string, processingMS int64) error
}

// Gateway is the self-hosted Platform implementation: candidate audio
// goes onto a Redis stream, workers transcribe it and generate the
// interviewer's next turn, and results come back per session over
// Redis pub/sub.
type Gateway struct {
	Redis  *redis.Client
	Chunks ChunkStore
	STT    STTProvider
	LLM    LLMProvider
	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	NumWorkers     int
	ChunkTTL       time.Duration
}

// STTProvider and LLMProvider mirror the provider packages; declared
// here so the gateway states exactly what it needs.
type STTProvider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error)
}

type LLMProvider interface {
	StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error)
}

func respChannel(sessionID string) string   { return "session:" + sessionID + ":response" }
func statusChannel(sessionID string) string { return "session:" + sessionID + ":status" }
func promptKey(sessionID string) string     { return "session:" + sessionID + ":prompt" }
func languageKey(sessionID string) string   { return "session:" + sessionID + ":language" }

// Start validates dependencies, applies defaults and launches the
// worker pool. Safe to call once at process start.
func (g *Gateway) Start(ctx context.Context) error {
	if g.Redis == nil || g.Chunks == nil || g.STT == nil || g.LLM == nil {
		return errors.New("voice.Gateway missing dependency: Redis/Chunks/STT/LLM must be set")
	}
	if g.Stream == "" {
		g.Stream = "interview:audio"
	}
	if g.Group == "" {
		g.Group = "interview-workers"
	}
	if g.ConsumerPrefix == "" {
		g.ConsumerPrefix = "w"
	}
	if g.NumWorkers <= 0 {
		g.NumWorkers = 5
	}
	if g.ChunkTTL <= 0 {
		g.ChunkTTL = 24 * time.Hour
	}
	if g.Logger == nil {
		g.Logger = logrus.New()
	}

	_ = g.Redis.XGroupCreateMkStream(ctx, g.Stream, g.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < g.NumWorkers; i++ {
		consumer := g.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go g.runConsumer(ctx, consumer)
	}
	return nil
}

// StartSession stores the assistant config, subscribes to the session
// channels and emits session-started once the subscription is live.
func (g *Gateway) StartSession(ctx context.Context, sessionID string, cfg AssistantConfig) (SessionHandle, error) {
	ttl := 2 * time.Hour
	if err := g.Redis.Set(ctx, promptKey(sessionID), cfg.SystemPrompt, ttl).Err(); err != nil {
		return nil, err
	}
	if err := g.Redis.Set(ctx, languageKey(sessionID), cfg.Language, ttl).Err(); err != nil {
		return nil, err
	}

	pubsub := g.Redis.Subscribe(ctx, respChannel(sessionID), statusChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	h := &gatewaySession{
		gateway:   g,
		sessionID: sessionID,
		pubsub:    pubsub,
		events:    make(chan interview.Event, 64),
		log:       g.Logger.WithField("session_id", sessionID),
	}
	h.events <- interview.Event{Type: interview.EventSessionStarted}
	go h.pump(ctx)
	return h, nil
}

type gatewaySession struct {
	gateway   *Gateway
	sessionID string
	pubsub    *redis.PubSub
	events    chan interview.Event
	log       *logrus.Entry
	speaking  bool
}

func (h *gatewaySession) Events() <-chan interview.Event { return h.events }

// PushAudio records the chunk as pending and enqueues it for the
// worker pool.
func (h *gatewaySession) PushAudio(ctx context.Context, chunk AudioChunk) error {
	if chunk.Index <= 0 {
		return errors.New("chunk index must be > 0")
	}
	if chunk.Base64 == "" && chunk.URL == "" {
		return errors.New("chunk carries no audio")
	}

	var b64Ptr, urlPtr *string
	if chunk.Base64 != "" {
		b64Ptr = &chunk.Base64
	}
	if chunk.URL != "" {
		urlPtr = &chunk.URL
	}

	now := time.Now().UTC()
	if err := h.gateway.Chunks.InsertChunk(ctx, &models.UtteranceBuffer{
		SessionID:   h.sessionID,
		ChunkIndex:  chunk.Index,
		AudioBase64: b64Ptr,
		AudioURL:    urlPtr,
		STTStatus:   "pending",
		ReplyStatus: "pending",
		Timestamp:   now,
		ExpiresAt:   now.Add(h.gateway.ChunkTTL),
	}); err != nil {
		return err
	}

	fields := map[string]any{
		"session_id":  h.sessionID,
		"chunk_index": strconv.FormatInt(chunk.Index, 10),
		"is_final":    strconv.FormatBool(chunk.IsFinal),
		"ts_unix":     strconv.FormatInt(now.Unix(), 10),
	}
	if b64Ptr != nil {
		fields["audio_base64"] = *b64Ptr
	}
	if urlPtr != nil {
		fields["audio_url"] = *urlPtr
	}

	return h.gateway.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: h.gateway.Stream,
		Values: fields,
	}).Err()
}

// Stop publishes the end-of-session status; the pump turns it into a
// session-ended event and shuts down. Safe to call more than once.
func (h *gatewaySession) Stop(ctx context.Context) error {
	return h.gateway.Redis.Publish(ctx, statusChannel(h.sessionID),
		`{"type":"status","status":"ended","message":"session ended"}`).Err()
}

// resultMsg is the superset of worker payloads on both channels.
type resultMsg struct {
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	Message      string  `json:"message"`
	ChunkIndex   int64   `json:"chunk_index"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	Chunk        string  `json:"chunk"`
	FullResponse string  `json:"full_response"`
}

// pump converts worker pub/sub payloads into typed session events.
func (h *gatewaySession) pump(ctx context.Context) {
	defer close(h.events)
	defer h.pubsub.Close()

	ch := h.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.emit(ctx, interview.Event{Type: interview.EventSessionEnded})
			return
		case m, ok := <-ch:
			if !ok {
				h.emit(ctx, interview.Event{Type: interview.EventSessionEnded})
				return
			}

			var msg resultMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				h.log.WithError(err).Warn("dropping malformed worker payload")
				continue
			}

			switch msg.Type {
			case "stt_result":
				ev, ok := interview.NormalizeMessage(interview.PlatformMessage{
					Type: "transcript",
					Role: "user",
					Text: msg.Text,
				})
				if ok {
					h.emit(ctx, ev)
				}

			case "llm_chunk":
				if !h.speaking {
					h.speaking = true
					h.emit(ctx, interview.Event{Type: interview.EventSpeechStarted})
				}

			case "llm_complete":
				if h.speaking {
					h.speaking = false
					h.emit(ctx, interview.Event{Type: interview.EventSpeechEnded})
				}
				ev, ok := interview.NormalizeMessage(interview.PlatformMessage{
					Type:       "transcript",
					Role:       "assistant",
					Transcript: msg.FullResponse,
				})
				if ok {
					h.emit(ctx, ev)
				}

			case "status":
				switch msg.Status {
				case "ended":
					h.emit(ctx, interview.Event{Type: interview.EventSessionEnded})
					return
				case "fatal":
					h.emit(ctx, interview.Event{Type: interview.EventError, Err: errors.New(msg.Message)})
				}
			}
		}
	}
}

func (h *gatewaySession) emit(ctx context.Context, ev interview.Event) {
	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}
