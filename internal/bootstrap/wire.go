package bootstrap

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"laudo/internal/audio"
	"laudo/internal/commands"
	"laudo/internal/config"
	"laudo/internal/logging"
	"laudo/internal/observe"
	"laudo/internal/ports"
	"laudo/internal/providers/deepgram"
	"laudo/internal/rules"
	"laudo/internal/speech"
	"laudo/internal/usecase"
	"laudo/internal/vocabulary"
)

// Services is the assembled runtime graph.
type Services struct {
	Session *usecase.Session
	Config  config.Config
	Logger  *logging.Logger
}

// Close releases resources owned by the graph.
func (s Services) Close() error {
	return s.Logger.Close()
}

// Option adjusts how Build assembles the graph.
type Option func(*buildOptions)

type buildOptions struct {
	logFile       string
	meterProvider metric.MeterProvider
	provider      ports.SpeechProvider
}

// WithLogFile logs to path when LAUDO_LOG_FILE is unset. The terminal shell
// uses it to keep stderr off the screen.
func WithLogFile(path string) Option {
	return func(o *buildOptions) {
		o.logFile = path
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *buildOptions) {
		o.meterProvider = mp
	}
}

// WithSpeechProvider replaces the ffmpeg + Deepgram provider.
func WithSpeechProvider(provider ports.SpeechProvider) Option {
	return func(o *buildOptions) {
		o.provider = provider
	}
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard, opts ...Option) (Services, error) {
	o := buildOptions{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = o.logFile
	}
	logger, err := logging.New(cfg.Log.Level, logFile)
	if err != nil {
		return Services{}, fmt.Errorf("configure logging: %w", err)
	}

	session, err := buildSession(cfg, o, eventSink, clipboard, logger.Logger)
	if err != nil {
		_ = logger.Close()
		return Services{}, err
	}

	logger.Info("session ready",
		slog.Bool("supported", session.Supported()),
		slog.String("model", cfg.Deepgram.Model),
		slog.String("language", cfg.Deepgram.Language),
		slog.String("rules_file", cfg.Rules.Path),
		slog.String("vocabulary_file", cfg.Vocabulary.Path))

	return Services{Session: session, Config: cfg, Logger: logger}, nil
}

func buildSession(
	cfg config.Config,
	o buildOptions,
	eventSink ports.EventSink,
	clipboard ports.Clipboard,
	logger *slog.Logger,
) (*usecase.Session, error) {
	vocab, err := vocabulary.Load(cfg.Vocabulary.Path)
	if err != nil {
		return nil, err
	}

	rulesEngine, err := rules.NewEngine(cfg.Rules.Path, vocab.ExtraCorrections()...)
	if err != nil {
		return nil, err
	}

	dispatcher, err := commands.NewDispatcher(vocab.ExtraCommands(), commands.WithSuggestThreshold(cfg.Session.SuggestThreshold))
	if err != nil {
		return nil, fmt.Errorf("vocabulary commands: %w", err)
	}

	metrics, err := observe.NewMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	provider := o.provider
	if provider == nil {
		provider = speech.NewProvider(
			audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
			deepgram.NewProvider(deepgram.Config{
				APIKey:      cfg.Deepgram.APIKey,
				APIBaseURL:  cfg.Deepgram.APIBaseURL,
				Model:       cfg.Deepgram.Model,
				Language:    cfg.Deepgram.Language,
				SmartFormat: cfg.Deepgram.SmartFormat,
			}),
			speech.Config{
				Audio: ports.AudioConfig{
					SampleRate:  cfg.Audio.SampleRate,
					Channels:    cfg.Audio.Channels,
					InputFormat: cfg.Audio.InputFormat,
					InputDevice: cfg.Audio.InputDevice,
				},
				Streaming: ports.StreamingConfig{
					SampleRate: cfg.Audio.SampleRate,
					Channels:   cfg.Audio.Channels,
					Encoding:   "linear16",
				},
				ChunkSize: cfg.Audio.ChunkSize,
			},
			logger,
		)
	}

	return usecase.NewSession(
		provider,
		dispatcher,
		rulesEngine,
		clipboard,
		eventSink,
		usecase.Config{RestartDelay: cfg.Session.RestartDelay},
		usecase.WithLogger(logger),
		usecase.WithMetrics(metrics),
	), nil
}
