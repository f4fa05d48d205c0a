package speech

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"laudo/internal/domain"
	"laudo/internal/ports"
)

// stream joins one capture session to one transcription session. Capture
// EOF closes the send side so the transcriber flushes and ends the stream
// naturally.
type stream struct {
	session ports.TranscriptionSession
	audio   ports.AudioSession
	logger  *slog.Logger

	pumpDone chan struct{}

	mu       sync.Mutex
	stopping bool
	pumpErr  error

	closeOnce sync.Once
}

func newStream(session ports.TranscriptionSession, audio ports.AudioSession, logger *slog.Logger) *stream {
	return &stream{
		session:  session,
		audio:    audio,
		logger:   logger,
		pumpDone: make(chan struct{}),
	}
}

func (s *stream) Results() <-chan domain.Utterance {
	return s.session.Results()
}

// Wait returns the transcriber's error or, failing that, a capture failure.
func (s *stream) Wait() error {
	err := s.session.Wait()
	<-s.pumpDone
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pumpErr
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.markStopping()
		if err := s.audio.Stop(); err != nil {
			s.logger.Warn("failed to stop audio capture cleanly", slog.Any("error", err))
		}
		_ = s.session.Close()
	})
	return nil
}

// pump copies PCM chunks from capture into the transcriber until either side
// ends.
func (s *stream) pump(chunkSize int) {
	defer close(s.pumpDone)

	buf := make([]byte, chunkSize)
	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if sendErr := s.session.SendAudio(buf[:n]); sendErr != nil {
				// the transcriber has ended and reports its own error from Wait
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.recordPumpErr(fmt.Errorf("audio capture error: %w", err))
			}
			_ = s.session.CloseSend()
			return
		}
	}
}

// stopAudioWhenDone releases the capture process once the transcriber ends on
// its own, which also unblocks pump.
func (s *stream) stopAudioWhenDone() {
	_ = s.session.Wait()
	s.markStopping()
	if err := s.audio.Stop(); err != nil {
		s.logger.Debug("audio capture stopped with error", slog.Any("error", err))
	}
}

func (s *stream) recordPumpErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping || s.pumpErr != nil {
		return
	}
	s.pumpErr = err
}

// markStopping makes read errors caused by stopping capture ourselves
// harmless.
func (s *stream) markStopping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping = true
}
