package voice

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/mockmate-ai/mockmate/internal/interview"
)

// DeviceSource returns a device source for one session. The "device" is
// the browser's camera+microphone; the server only tracks track state
// and mirrors it to the client over the session status channel so the
// UI stays in sync after reconnects.
func (g *Gateway) DeviceSource(sessionID string) interview.DeviceSource {
	return &remoteDeviceSource{rdb: g.Redis, sessionID: sessionID}
}

type remoteDeviceSource struct {
	rdb       *redis.Client
	sessionID string
}

func (s *remoteDeviceSource) Acquire(ctx context.Context) (interview.Device, error) {
	d := &remoteDevice{rdb: s.rdb, sessionID: s.sessionID}
	if err := d.publish(ctx, "acquired", true, true); err != nil {
		return nil, err
	}
	return d, nil
}

type remoteDevice struct {
	rdb       *redis.Client
	sessionID string
	videoOn   bool
	audioOn   bool
}

func (d *remoteDevice) publish(ctx context.Context, event string, video, audio bool) error {
	d.videoOn, d.audioOn = video, audio
	payload, _ := json.Marshal(map[string]any{
		"type":  "media",
		"event": event,
		"video": video,
		"audio": audio,
	})
	return d.rdb.Publish(ctx, statusChannel(d.sessionID), string(payload)).Err()
}

func (d *remoteDevice) SetVideoEnabled(on bool) error {
	return d.publish(context.Background(), "toggle", on, d.audioOn)
}

func (d *remoteDevice) SetAudioEnabled(on bool) error {
	return d.publish(context.Background(), "toggle", d.videoOn, on)
}

func (d *remoteDevice) StopVideo() error {
	return d.publish(context.Background(), "stopped", false, d.audioOn)
}

func (d *remoteDevice) StopAudio() error {
	return d.publish(context.Background(), "stopped", d.videoOn, false)
}
