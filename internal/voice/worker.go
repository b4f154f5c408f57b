package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func (g *Gateway) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := g.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    g.Group,
			Consumer: consumer,
			Streams:  []string{g.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				g.handleChunk(ctx, msg)
				_ = g.Redis.XAck(ctx, g.Stream, g.Group, msg.ID).Err()
			}
		}
	}
}

// handleChunk runs one candidate chunk through STT and then asks the
// LLM for the interviewer's next turn, publishing progress to the
// session channels as it goes.
func (g *Gateway) handleChunk(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	chunkIndexStr := getStr("chunk_index")
	if sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)

	log := g.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	respCh := respChannel(sessionID)
	statusCh := statusChannel(sessionID)

	language, _ := g.Redis.Get(ctx, languageKey(sessionID)).Result()
	systemPrompt, err := g.Redis.Get(ctx, promptKey(sessionID)).Result()
	if err != nil {
		log.WithError(err).Warn("no assistant prompt for session, dropping chunk")
		g.publishStatus(ctx, statusCh, "failed", "session prompt missing", chunkIndex)
		return
	}

	audioBytes, ok := g.fetchAudio(ctx, getStr, log, statusCh, chunkIndex)
	if !ok {
		return
	}

	// STT
	_ = g.Chunks.UpdateSTT(ctx, sessionID, chunkIndex, "", 0, "processing")
	g.publishStatus(ctx, statusCh, "processing", "stt processing", chunkIndex)

	text, conf, err := g.STT.Transcribe(ctx, audioBytes, language)
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = g.Chunks.UpdateSTT(ctx, sessionID, chunkIndex, "", 0, "failed")
		g.publishStatus(ctx, statusCh, "failed", "stt failed", chunkIndex)
		return
	}

	_ = g.Chunks.UpdateSTT(ctx, sessionID, chunkIndex, text, conf, "done")
	sttPayload, _ := json.Marshal(map[string]any{
		"type":        "stt_result",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
		"is_final":    true,
	})
	_ = g.Redis.Publish(ctx, respCh, string(sttPayload)).Err()

	if strings.TrimSpace(text) == "" {
		// nothing to answer
		g.publishStatus(ctx, statusCh, "done", "empty utterance", chunkIndex)
		return
	}

	// Interviewer turn
	start := time.Now()
	_ = g.Chunks.UpdateReply(ctx, sessionID, chunkIndex, "", "processing", 0)
	g.publishStatus(ctx, statusCh, "processing", "interviewer thinking", chunkIndex)

	prompt := systemPrompt + "\n\nCandidate said:\n" + text + "\n\nRespond as the interviewer."
	chunks, errs := g.LLM.StreamAnswer(ctx, prompt)

	full := strings.Builder{}
	seq := int64(0)
	for chunk := range chunks {
		seq++
		full.WriteString(chunk)

		chPayload, _ := json.Marshal(map[string]any{
			"type":        "llm_chunk",
			"chunk_index": chunkIndex,
			"seq":         seq,
			"chunk":       chunk,
		})
		_ = g.Redis.Publish(ctx, respCh, string(chPayload)).Err()
	}

	var streamErr error
	select {
	case streamErr = <-errs:
	default:
	}
	if streamErr != nil {
		log.WithError(streamErr).Error("interviewer reply failed")
		_ = g.Chunks.UpdateReply(ctx, sessionID, chunkIndex, "", "failed", time.Since(start).Milliseconds())
		g.publishStatus(ctx, statusCh, "failed", "interviewer reply failed", chunkIndex)
		return
	}

	reply := full.String()
	procMS := time.Since(start).Milliseconds()
	_ = g.Chunks.UpdateReply(ctx, sessionID, chunkIndex, reply, "done", procMS)

	donePayload, _ := json.Marshal(map[string]any{
		"type":               "llm_complete",
		"chunk_index":        chunkIndex,
		"full_response":      reply,
		"processing_time_ms": procMS,
	})
	_ = g.Redis.Publish(ctx, respCh, string(donePayload)).Err()
	g.publishStatus(ctx, statusCh, "done", "chunk processed", chunkIndex)
}

func (g *Gateway) fetchAudio(ctx context.Context, getStr func(string) string, log *logrus.Entry, statusCh string, chunkIndex int64) ([]byte, bool) {
	if b64 := getStr("audio_base64"); b64 != "" {
		raw := b64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			log.WithError(err).Warn("base64 decode failed")
			g.publishStatus(ctx, statusCh, "failed", "invalid audio_base64", chunkIndex)
			return nil, false
		}
		return decoded, true
	}

	if url := getStr("audio_url"); url != "" {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("audio_url fetch failed")
			g.publishStatus(ctx, statusCh, "failed", "failed to fetch audio_url", chunkIndex)
			return nil, false
		}
		defer resp.Body.Close()

		const maxBytes = 10 << 20
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if len(body) == 0 {
			g.publishStatus(ctx, statusCh, "failed", "empty audio", chunkIndex)
			return nil, false
		}
		return body, true
	}

	return nil, false
}

func (g *Gateway) publishStatus(ctx context.Context, channel, status, message string, chunkIndex int64) {
	payload, _ := json.Marshal(map[string]any{
		"type":        "status",
		"status":      status,
		"message":     message,
		"chunk_index": chunkIndex,
	})
	_ = g.Redis.Publish(ctx, channel, string(payload)).Err()
}
