package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/mockmate-ai/mockmate/internal/services"
	"github.com/mockmate-ai/mockmate/internal/utils"
	"github.com/mockmate-ai/mockmate/internal/voice"
)

// WSHandler attaches a client to a live interview session. Candidate
// audio flows in; live questions, transcription results and streamed
// interviewer replies flow out.
type WSHandler struct {
	interviews services.InterviewService
	redis      *redis.Client
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		redis:      rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type        string `json:"type"`
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
	IsFinal     bool   `json:"is_final"`
	Enabled     bool   `json:"enabled"` // toggle_video / toggle_audio
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func (h *WSHandler) SessionWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.SessionWS", "missing session_id", nil))
		return
	}

	// ownership check against the durable record
	if _, err := h.interviews.Get(c.Request.Context(), userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	rt, live := h.interviews.Runtime(sessionID)
	if !live {
		writeError(c, utils.E(utils.CodeFailedPrecondition, "WSHandler.SessionWS", "session is not running on this instance", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// worker results for this session, mirrored to the client as-is
	pubsub := h.redis.Subscribe(ctx,
		"session:"+sessionID+":response",
		"session:"+sessionID+":status",
	)
	defer pubsub.Close()

	readDone := make(chan struct{})
	go h.readLoop(ctx, conn, wc, rt, sessionID, userID, readDone)

	msgCh := pubsub.Channel()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case entry, ok := <-rt.Live:
			if !ok {
				_ = wc.writeText([]byte(`{"type":"session_ended"}`))
				return
			}
			_ = wc.writeJSON(gin.H{
				"type":      "question",
				"role":      entry.Role,
				"content":   entry.Content,
				"timestamp": entry.Timestamp,
			})
		case m, ok := <-msgCh:
			if !ok {
				return
			}
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, wc *wsConn, rt *services.SessionRuntime, sessionID, userID string, done chan struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
			continue
		}

		switch msg.Type {
		case "audio_chunk":
			if msg.ChunkIndex <= 0 {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"chunk_index must be > 0"}`))
				continue
			}
			if msg.AudioBase64 == "" && msg.AudioURL == "" {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 or audio_url required"}`))
				continue
			}
			if err := rt.Handle.PushAudio(ctx, voice.AudioChunk{
				Index:   msg.ChunkIndex,
				Base64:  msg.AudioBase64,
				URL:     msg.AudioURL,
				IsFinal: msg.IsFinal,
			}); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
			}

		case "toggle_video":
			applied := rt.Session.Media().SetVideoEnabled(msg.Enabled)
			_ = wc.writeJSON(gin.H{"type": "media_state", "track": "video", "enabled": rt.Session.Media().VideoEnabled(), "applied": applied})

		case "toggle_audio":
			applied := rt.Session.Media().SetAudioEnabled(msg.Enabled)
			_ = wc.writeJSON(gin.H{"type": "media_state", "track": "audio", "enabled": rt.Session.Media().AudioEnabled(), "applied": applied})

		case "end_session":
			if _, err := h.interviews.End(ctx, userID, sessionID); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INTERNAL","message":"failed to end session"}`))
			}
			return

		default:
			_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
		}
	}
}
