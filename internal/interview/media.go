package interview

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mockmate-ai/mockmate/internal/utils"
)

// Device is an open camera+microphone handle with independently
// toggleable tracks.
type Device interface {
	SetVideoEnabled(on bool) error
	SetAudioEnabled(on bool) error
	StopVideo() error
	StopAudio() error
}

// DeviceSource hands out device handles. A denial or device error must
// be reported as an error from Acquire; callers treat it as non-fatal.
type DeviceSource interface {
	Acquire(ctx context.Context) (Device, error)
}

// MediaController owns the local capture handle for one session. The
// handle is used for self-preview and mute state only; the voice
// platform captures its own audio.
type MediaController struct {
	source DeviceSource
	log    *logrus.Entry

	mu      sync.Mutex
	device  Device
	videoOn bool
	audioOn bool
}

func NewMediaController(source DeviceSource, log *logrus.Entry) *MediaController {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &MediaController{source: source, log: log}
}

// Acquire requests the device. Denial degrades to a no-device state and
// is not an error for the caller; the session proceeds without preview.
// A second acquire while a handle is live is rejected.
func (m *MediaController) Acquire(ctx context.Context) error {
	const op = "MediaController.Acquire"

	m.mu.Lock()
	if m.device != nil {
		m.mu.Unlock()
		return utils.E(utils.CodeFailedPrecondition, op, "device handle already live", nil)
	}
	source := m.source
	m.mu.Unlock()

	if source == nil {
		return nil
	}

	dev, err := source.Acquire(ctx)
	if err != nil {
		m.log.WithError(err).Warn("media device unavailable, continuing without preview")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		// lost the race to a concurrent acquire; keep the single handle
		_ = dev.StopAudio()
		_ = dev.StopVideo()
		return utils.E(utils.CodeFailedPrecondition, op, "device handle already live", nil)
	}
	m.device = dev
	m.videoOn = true
	m.audioOn = true
	return nil
}

// HasDevice reports whether a handle is live. UI toggles are disabled
// when it is false.
func (m *MediaController) HasDevice() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device != nil
}

// SetVideoEnabled toggles the video track on the open handle without
// re-acquiring. No-op without a device.
func (m *MediaController) SetVideoEnabled(on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return false
	}
	if err := m.device.SetVideoEnabled(on); err != nil {
		m.log.WithError(err).Warn("failed to toggle video track")
		return false
	}
	m.videoOn = on
	return true
}

// SetAudioEnabled toggles the audio track on the open handle without
// re-acquiring. No-op without a device.
func (m *MediaController) SetAudioEnabled(on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return false
	}
	if err := m.device.SetAudioEnabled(on); err != nil {
		m.log.WithError(err).Warn("failed to toggle audio track")
		return false
	}
	m.audioOn = on
	return true
}

func (m *MediaController) VideoEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device != nil && m.videoOn
}

func (m *MediaController) AudioEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device != nil && m.audioOn
}

// Release stops all tracks and drops the handle. Idempotent, safe
// without a prior acquire, and a failure stopping one track never
// prevents stopping the other.
func (m *MediaController) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return
	}
	if err := m.device.StopAudio(); err != nil {
		m.log.WithError(err).Warn("failed to stop audio track")
	}
	if err := m.device.StopVideo(); err != nil {
		m.log.WithError(err).Warn("failed to stop video track")
	}
	m.device = nil
	m.videoOn = false
	m.audioOn = false
}
