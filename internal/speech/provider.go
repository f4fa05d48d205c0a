// Package speech turns microphone capture plus a streaming transcriber into
// the recognition streams the dictation session listens to.
package speech

import (
	"context"
	"fmt"
	"log/slog"

	"laudo/internal/ports"
)

const defaultChunkSize = 4096

// Config controls capture and streaming parameters.
type Config struct {
	Audio     ports.AudioConfig
	Streaming ports.StreamingConfig
	ChunkSize int
}

// Provider implements ports.SpeechProvider.
type Provider struct {
	capture     ports.AudioCapture
	transcriber ports.Transcriber
	cfg         Config
	logger      *slog.Logger
}

func NewProvider(capture ports.AudioCapture, transcriber ports.Transcriber, cfg Config, logger *slog.Logger) *Provider {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = defaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	// the listener needs interim results for the live confidence display
	cfg.Streaming.InterimResults = true
	if cfg.Streaming.SampleRate <= 0 {
		cfg.Streaming.SampleRate = cfg.Audio.SampleRate
	}
	if cfg.Streaming.Channels <= 0 {
		cfg.Streaming.Channels = cfg.Audio.Channels
	}
	return &Provider{capture: capture, transcriber: transcriber, cfg: cfg, logger: logger}
}

// Supported requires transcriber credentials and a capture command on PATH.
func (p *Provider) Supported() bool {
	return p.transcriber.Configured() && p.capture.Available()
}

// StartStreaming opens the transcriber first so a bad key or network error
// never leaves a capture process running.
func (p *Provider) StartStreaming(ctx context.Context) (ports.RecognitionStream, error) {
	session, err := p.transcriber.Open(ctx, p.cfg.Streaming)
	if err != nil {
		return nil, err
	}

	audio, err := p.capture.Start(ctx, p.cfg.Audio)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("start audio capture: %w", err)
	}

	stream := newStream(session, audio, p.logger)
	go stream.pump(p.cfg.ChunkSize)
	go stream.stopAudioWhenDone()
	return stream, nil
}
