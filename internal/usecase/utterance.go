package usecase

import (
	"context"
	"log/slog"
	"strings"

	"laudo/internal/domain"
	"laudo/internal/ports"
)

// handleUtterance applies one recognition result from the stream with the
// given generation. Results from stale streams are ignored.
func (s *Session) handleUtterance(generation uint64, utterance domain.Utterance) {
	s.mu.Lock()
	if !s.currentLocked(generation) {
		s.mu.Unlock()
		return
	}

	confidence := utterance.ConfidencePercent()
	s.confidence = confidence
	s.metrics.RecordConfidence(context.Background(), confidence)

	if !utterance.IsFinal {
		text := utterance.Text
		s.unlockAndEmit(func(sink ports.EventSink) { sink.InterimResult(text, confidence) })
		return
	}

	batch := []func(ports.EventSink){
		func(sink ports.EventSink) { sink.InterimResult("", confidence) },
	}
	batch = append(batch, s.applyFinalLocked(utterance.Text)...)
	s.unlockAndEmit(batch...)
}

// applyFinalLocked classifies a finalized utterance and applies the resulting
// action to the transcript.
func (s *Session) applyFinalLocked(text string) []func(ports.EventSink) {
	// Blank finals are dropped instead of appended as an empty fragment.
	// Silence produces them and each would only add a separator space.
	if strings.TrimSpace(text) == "" {
		return nil
	}

	action, command := s.dispatcher.Match(text)
	s.metrics.RecordUtterance(context.Background(), action, command)
	if command {
		s.logger.Debug("voice command", slog.String("action", string(action.Kind)))
	}

	switch action.Kind {
	case domain.ActionClearAll:
		s.transcript.Clear()
	case domain.ActionDeleteLastSentence:
		s.transcript.DeleteLastSentence()
	case domain.ActionSaveReport:
		_, _, batch := s.saveLocked()
		return batch
	default:
		s.transcript.Append(s.corrector.Apply(action.Text))
	}

	batch := []func(ports.EventSink){s.transcriptChanged()}
	if !command {
		if phrase, ok := s.dispatcher.Suggest(text); ok {
			batch = append(batch, func(sink ports.EventSink) { sink.CommandSuggested(text, phrase) })
		}
	}
	return batch
}
