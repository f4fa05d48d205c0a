package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"laudo/internal/domain"
	"laudo/internal/editor"
	"laudo/internal/observe"
	"laudo/internal/ports"
	"laudo/internal/reports"
)

var ErrUnsupportedEnvironment = errors.New("speech recognition is not supported in this environment")

// Config controls listening behavior.
type Config struct {
	// RestartDelay is waited before reopening a stream that ended naturally.
	RestartDelay time.Duration
}

// Option configures optional collaborators of a Session.
type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics *observe.Metrics) Option {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// WithRecorder replaces the report recorder, e.g. to inject a clock.
func WithRecorder(recorder *reports.Recorder) Option {
	return func(s *Session) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// Session owns one dictation: the transcript, the saved reports and the
// listening state. Shell calls and provider events are serialized on mu.
type Session struct {
	provider   ports.SpeechProvider
	dispatcher ports.CommandDispatcher
	corrector  ports.Corrector
	clipboard  ports.Clipboard
	events     ports.EventSink
	logger     *slog.Logger
	metrics    *observe.Metrics
	cfg        Config
	supported  bool

	// emitMu keeps sink notifications in mutation order without holding mu
	// while the sink runs.
	emitMu sync.Mutex

	mu         sync.Mutex
	state      domain.ListeningState
	generation uint64
	stream     ports.RecognitionStream
	listenCtx  context.Context
	cancel     context.CancelFunc
	confidence int
	transcript *editor.Transcript
	recorder   *reports.Recorder
}

func NewSession(
	provider ports.SpeechProvider,
	dispatcher ports.CommandDispatcher,
	corrector ports.Corrector,
	clipboard ports.Clipboard,
	events ports.EventSink,
	cfg Config,
	opts ...Option,
) *Session {
	if cfg.RestartDelay < 0 {
		cfg.RestartDelay = 0
	}
	s := &Session{
		provider:   provider,
		dispatcher: dispatcher,
		corrector:  corrector,
		clipboard:  clipboard,
		events:     events,
		logger:     slog.Default(),
		cfg:        cfg,
		state:      domain.ListeningStateIdle,
		transcript: editor.New(),
		recorder:   reports.NewRecorder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = noopSink{}
	}
	s.supported = provider != nil && provider.Supported()
	return s
}

// Supported reports whether Start can ever succeed.
func (s *Session) Supported() bool {
	return s.supported
}

// Status returns a snapshot of the session.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Status{
		State:      s.state,
		Listening:  s.state == domain.ListeningStateListening,
		Supported:  s.supported,
		Confidence: s.confidence,
		Reports:    s.recorder.Len(),
	}
}

func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Text()
}

func (s *Session) SavedReports() []domain.SavedReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.List()
}

func (s *Session) CommandHelp() []domain.CommandHelp {
	return s.dispatcher.Help()
}

func (s *Session) ClearTranscript() {
	s.mu.Lock()
	s.transcript.Clear()
	s.unlockAndEmit(s.transcriptChanged())
}

func (s *Session) DeleteLastSentence() {
	s.mu.Lock()
	s.transcript.DeleteLastSentence()
	s.unlockAndEmit(s.transcriptChanged())
}

// SetTranscript replaces the transcript with text edited by the user.
func (s *Session) SetTranscript(text string) {
	s.mu.Lock()
	s.transcript.Replace(text)
	s.unlockAndEmit(s.transcriptChanged())
}

// SaveReport snapshots the transcript and clears it. A blank transcript is
// left alone and ok is false.
func (s *Session) SaveReport() (domain.SavedReport, bool) {
	s.mu.Lock()
	report, ok, batch := s.saveLocked()
	s.unlockAndEmit(batch...)
	return report, ok
}

// CopyTranscript writes the transcript verbatim to the clipboard.
func (s *Session) CopyTranscript(ctx context.Context) error {
	text := s.Transcript()
	if s.clipboard == nil {
		return errors.New("clipboard is not available")
	}
	if err := s.clipboard.SetText(ctx, text); err != nil {
		s.emit(func(sink ports.EventSink) {
			sink.SessionError(domain.ErrorCodeClipboard, "transcript ready but clipboard write failed")
		})
		return fmt.Errorf("copy transcript: %w", err)
	}
	return nil
}

func (s *Session) saveLocked() (domain.SavedReport, bool, []func(ports.EventSink)) {
	report, ok := s.recorder.Save(s.transcript.Text())
	if !ok {
		return domain.SavedReport{}, false, nil
	}
	s.transcript.Clear()
	s.metrics.RecordReportSaved(context.Background())
	s.logger.Info("report saved", slog.String("report_id", report.ID), slog.Int("reports", s.recorder.Len()))
	return report, true, []func(ports.EventSink){
		func(sink ports.EventSink) { sink.ReportSaved(report) },
		s.transcriptChanged(),
	}
}

// transcriptChanged captures the current text; mu must be held.
func (s *Session) transcriptChanged() func(ports.EventSink) {
	text := s.transcript.Text()
	return func(sink ports.EventSink) { sink.TranscriptChanged(text) }
}

// unlockAndEmit releases mu and delivers batch before any later mutation's
// notifications.
func (s *Session) unlockAndEmit(batch ...func(ports.EventSink)) {
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()
	for _, fn := range batch {
		if fn != nil {
			fn(s.events)
		}
	}
}

func (s *Session) emit(batch ...func(ports.EventSink)) {
	s.mu.Lock()
	s.unlockAndEmit(batch...)
}

type noopSink struct{}

func (noopSink) ListeningStateChanged(domain.ListeningState, domain.ListeningReason) {}
func (noopSink) InterimResult(string, int)                                           {}
func (noopSink) TranscriptChanged(string)                                            {}
func (noopSink) ReportSaved(domain.SavedReport)                                      {}
func (noopSink) CommandSuggested(string, string)                                     {}
func (noopSink) SessionError(domain.ErrorCode, string)                               {}
