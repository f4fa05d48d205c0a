// Package deepgram streams PCM audio to the Deepgram live transcription API
// over a websocket and decodes its results into utterances.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"laudo/internal/domain"
	"laudo/internal/ports"
)

const (
	defaultBaseURL  = "https://api.deepgram.com/v1"
	defaultModel    = "nova-2"
	defaultLanguage = "pt-BR"
)

var ErrMissingAPIKey = errors.New("DEEPGRAM_API_KEY is not configured")

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

// Provider opens Deepgram live transcription streams.
type Provider struct {
	cfg    Config
	dialer *websocket.Dialer
}

func NewProvider(cfg Config) *Provider {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = defaultLanguage
	}
	return &Provider{cfg: cfg, dialer: websocket.DefaultDialer}
}

// Configured reports whether an API key is present.
func (p *Provider) Configured() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

// Open dials the listen endpoint. The stream lives until Close, until ctx is
// done, or until Deepgram closes it after CloseSend.
func (p *Provider) Open(ctx context.Context, cfg ports.StreamingConfig) (ports.TranscriptionSession, error) {
	if !p.Configured() {
		return nil, ErrMissingAPIKey
	}

	wsURL, err := buildListenURL(p.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := p.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	return newStream(ctx, conn), nil
}

// Stream is one live transcription websocket.
type Stream struct {
	conn *websocket.Conn

	results chan domain.Utterance
	audio   chan []byte
	stop    chan struct{}
	done    chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	sendMu     sync.Mutex
	sendClosed bool

	stopOnce sync.Once
}

func newStream(ctx context.Context, conn *websocket.Conn) *Stream {
	s := &Stream{
		conn:    conn,
		results: make(chan domain.Utterance, 64),
		audio:   make(chan []byte, 32),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	go func() {
		s.wg.Wait()
		close(s.results)
		_ = conn.Close()
		close(s.done)
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

// SendAudio queues a PCM chunk for the socket.
func (s *Stream) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.sendClosed {
		return errors.New("audio stream is already closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("stream closed")
	}
}

// CloseSend asks Deepgram to flush pending results and close the stream.
func (s *Stream) CloseSend() error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.sendClosed {
		s.sendClosed = true
		close(s.audio)
	}
	return nil
}

func (s *Stream) Results() <-chan domain.Utterance {
	return s.results
}

// Wait blocks until the socket is gone. A normal close returns nil.
func (s *Stream) Wait() error {
	<-s.done
	return s.waitErr()
}

// Close tears the socket down without waiting for pending results.
func (s *Stream) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

func (s *Stream) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Stream) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	if err == nil || s.stopped() {
		return
	}
	if isNormalClose(err) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// isNormalClose reports whether err, possibly wrapped, is a websocket close
// the server sends when a stream finishes.
func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	switch closeErr.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	default:
		return false
	}
}

func (s *Stream) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case chunk, ok := <-s.audio:
			if !ok {
				if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
					s.setErr(fmt.Errorf("failed to close stream: %w", err))
				}
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				s.setErr(fmt.Errorf("failed to send audio: %w", err))
				return
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Stream) readLoop() {
	defer s.wg.Done()
	// unblocks writeLoop when the server goes away first
	defer s.stopOnce.Do(func() { close(s.stop) })

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		switch {
		case strings.EqualFold(msg.Type, "Error"):
			detail := strings.TrimSpace(msg.Description)
			if detail == "" {
				detail = strings.TrimSpace(msg.Message)
			}
			if detail == "" {
				detail = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(detail))
			return
		case msg.Type == "" || strings.EqualFold(msg.Type, "Results"):
			utterance, ok := msg.utterance()
			if !ok {
				continue
			}
			select {
			case s.results <- utterance:
			case <-s.stop:
				return
			}
		}
	}
}

// message is the subset of a Deepgram live response the stream reads.
type message struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []alternative `json:"alternatives"`
	} `json:"channel"`
}

type alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// utterance takes the first alternative. Interim results with no text are
// dropped; finals are kept even when blank so the listener sees them.
func (m message) utterance() (domain.Utterance, bool) {
	if len(m.Channel.Alternatives) == 0 {
		return domain.Utterance{}, false
	}
	best := m.Channel.Alternatives[0]
	u := domain.Utterance{
		Text:       strings.TrimSpace(best.Transcript),
		Confidence: best.Confidence,
		IsFinal:    m.IsFinal || m.SpeechFinal,
	}
	if u.Text == "" && !u.IsFinal {
		return domain.Utterance{}, false
	}
	return u, true
}

func buildListenURL(providerCfg Config, streamCfg ports.StreamingConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = defaultBaseURL
	}

	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(streamCfg.SampleRate))
	query.Set("channels", strconv.Itoa(streamCfg.Channels))
	query.Set("interim_results", strconv.FormatBool(streamCfg.InterimResults))
	query.Set("smart_format", strconv.FormatBool(providerCfg.SmartFormat))
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
