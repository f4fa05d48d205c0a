package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"laudo/internal/domain"
	"laudo/internal/ports"
)

// Start opens a recognition stream and moves the session to listening.
// Calling Start while already listening does nothing.
func (s *Session) Start(ctx context.Context) error {
	if !s.supported {
		s.emit(func(sink ports.EventSink) {
			sink.SessionError(domain.ErrorCodeUnsupported, ErrUnsupportedEnvironment.Error())
		})
		return ErrUnsupportedEnvironment
	}

	s.mu.Lock()
	if s.state == domain.ListeningStateListening {
		s.mu.Unlock()
		return nil
	}
	listenCtx, cancel := context.WithCancel(ctx)
	s.state = domain.ListeningStateListening
	s.generation++
	generation := s.generation
	s.listenCtx = listenCtx
	s.cancel = cancel
	s.mu.Unlock()

	stream, err := s.provider.StartStreaming(listenCtx)

	s.mu.Lock()
	if generation != s.generation {
		// stopped while the provider was starting
		s.mu.Unlock()
		if stream != nil {
			go stream.Close()
		}
		cancel()
		return nil
	}
	if err != nil {
		err = fmt.Errorf("start recognition: %w", err)
		batch := s.failLocked(domain.ListeningReasonStartFailed, err)
		s.unlockAndEmit(batch...)
		return err
	}

	s.stream = stream
	s.logger.Info("listening started")
	s.unlockAndEmit(func(sink ports.EventSink) {
		sink.ListeningStateChanged(domain.ListeningStateListening, domain.ListeningReasonStarted)
	})

	go s.consume(generation, stream)
	return nil
}

// Stop closes the current stream and moves the session to idle. Results the
// closed stream still delivers are dropped. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != domain.ListeningStateListening {
		s.mu.Unlock()
		return
	}
	stream, cancel := s.resetLocked()
	s.logger.Info("listening stopped")
	s.unlockAndEmit(func(sink ports.EventSink) {
		sink.ListeningStateChanged(domain.ListeningStateIdle, domain.ListeningReasonStopped)
	})

	// closing tears down the capture process and the socket; keep it off the
	// caller's goroutine
	if stream != nil {
		go stream.Close()
	}
	if cancel != nil {
		cancel()
	}
}

// Toggle starts listening when idle and stops it otherwise.
func (s *Session) Toggle(ctx context.Context) error {
	s.mu.Lock()
	listening := s.state == domain.ListeningStateListening
	s.mu.Unlock()

	if listening {
		s.Stop()
		return nil
	}
	return s.Start(ctx)
}

func (s *Session) consume(generation uint64, stream ports.RecognitionStream) {
	for utterance := range stream.Results() {
		s.handleUtterance(generation, utterance)
	}
	s.handleStreamEnd(generation, stream.Wait())
}

// handleStreamEnd restarts a stream that ended naturally while listening and
// drops to idle on a provider error.
func (s *Session) handleStreamEnd(generation uint64, streamErr error) {
	s.mu.Lock()
	if !s.currentLocked(generation) {
		s.mu.Unlock()
		return
	}
	s.stream = nil

	if streamErr != nil {
		err := fmt.Errorf("recognition stream: %w", streamErr)
		batch := s.failLocked(domain.ListeningReasonProviderFailed, err)
		s.unlockAndEmit(batch...)
		return
	}
	ctx := s.listenCtx
	s.mu.Unlock()

	if s.cfg.RestartDelay > 0 {
		timer := time.NewTimer(s.cfg.RestartDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}

	stream, err := s.provider.StartStreaming(ctx)

	s.mu.Lock()
	if !s.currentLocked(generation) {
		s.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return
	}
	if err != nil {
		err = fmt.Errorf("restart recognition: %w", err)
		batch := s.failLocked(domain.ListeningReasonRestartFailed, err)
		s.unlockAndEmit(batch...)
		return
	}

	s.generation++
	next := s.generation
	s.stream = stream
	s.metrics.RecordRestart(context.Background())
	s.logger.Debug("recognition stream restarted")
	s.unlockAndEmit(func(sink ports.EventSink) {
		sink.ListeningStateChanged(domain.ListeningStateListening, domain.ListeningReasonStreamRestarted)
	})

	go s.consume(next, stream)
}

func (s *Session) currentLocked(generation uint64) bool {
	return generation == s.generation && s.state == domain.ListeningStateListening
}

// resetLocked moves to idle and invalidates the current stream. The caller
// closes the returned stream and cancels the context after releasing mu.
func (s *Session) resetLocked() (ports.RecognitionStream, context.CancelFunc) {
	stream, cancel := s.stream, s.cancel
	s.state = domain.ListeningStateIdle
	s.generation++
	s.stream = nil
	s.cancel = nil
	s.listenCtx = nil
	return stream, cancel
}

// failLocked drops to idle after a provider failure and returns the
// notifications to deliver. Callers have already detached the failed stream,
// which either never opened or has ended on its own.
func (s *Session) failLocked(reason domain.ListeningReason, err error) []func(ports.EventSink) {
	_, cancel := s.resetLocked()
	if cancel != nil {
		cancel()
	}

	s.metrics.RecordProviderError(context.Background())
	s.logger.Error("speech provider failed", slog.String("reason", string(reason)), slog.Any("error", err))

	detail := err.Error()
	return []func(ports.EventSink){
		func(sink ports.EventSink) { sink.SessionError(domain.ErrorCodeProvider, detail) },
		func(sink ports.EventSink) { sink.ListeningStateChanged(domain.ListeningStateIdle, reason) },
	}
}
