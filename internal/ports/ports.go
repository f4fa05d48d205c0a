package ports

import (
	"context"
	"io"

	"laudo/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Available() bool
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// RecognitionStream is one running recognition session of a speech provider.
//
// Results is closed when the stream ends. Wait then reports how it ended:
// nil for a natural end of stream, non-nil for a provider error.
type RecognitionStream interface {
	Results() <-chan domain.Utterance
	Wait() error
	Close() error
}

// TranscriptionSession is a live provider connection fed with audio chunks.
// CloseSend flushes pending audio; the provider then ends the stream.
type TranscriptionSession interface {
	RecognitionStream
	SendAudio(chunk []byte) error
	CloseSend() error
}

// Transcriber opens provider connections.
type Transcriber interface {
	Configured() bool
	Open(ctx context.Context, cfg StreamingConfig) (TranscriptionSession, error)
}

// SpeechProvider starts recognition streams.
type SpeechProvider interface {
	// Supported reports whether speech recognition can run in this environment.
	Supported() bool
	StartStreaming(ctx context.Context) (RecognitionStream, error)
}

// CommandDispatcher classifies finalized utterances.
type CommandDispatcher interface {
	// Match returns the action for the utterance and whether a command
	// rule produced it.
	Match(utterance string) (domain.Action, bool)
	Suggest(utterance string) (string, bool)
	Help() []domain.CommandHelp
}

// Corrector rewrites misrecognized domain terms.
type Corrector interface {
	Apply(text string) string
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits session state and events to the UI. Notifications are
// delivered in order from whichever goroutine changed the session; a sink must
// not call back into the session before returning.
type EventSink interface {
	ListeningStateChanged(state domain.ListeningState, reason domain.ListeningReason)
	InterimResult(text string, confidence int)
	TranscriptChanged(text string)
	ReportSaved(report domain.SavedReport)
	CommandSuggested(utterance string, phrase string)
	SessionError(code domain.ErrorCode, detail string)
}
