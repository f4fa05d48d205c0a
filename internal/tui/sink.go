package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"laudo/internal/domain"
)

// ProgramSink forwards session events into a Bubble Tea program. Events
// delivered before Attach are dropped.
type ProgramSink struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// Attach sets the delivery function, normally (*tea.Program).Send.
func (s *ProgramSink) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

func (s *ProgramSink) deliver(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (s *ProgramSink) ListeningStateChanged(state domain.ListeningState, reason domain.ListeningReason) {
	s.deliver(ListeningMsg{State: state, Reason: reason})
}

func (s *ProgramSink) InterimResult(text string, confidence int) {
	s.deliver(InterimMsg{Text: text, Confidence: confidence})
}

func (s *ProgramSink) TranscriptChanged(text string) {
	s.deliver(TranscriptMsg{Text: text})
}

func (s *ProgramSink) ReportSaved(report domain.SavedReport) {
	s.deliver(ReportSavedMsg{Report: report})
}

func (s *ProgramSink) CommandSuggested(utterance string, phrase string) {
	s.deliver(SuggestionMsg{Utterance: utterance, Phrase: phrase})
}

func (s *ProgramSink) SessionError(code domain.ErrorCode, detail string) {
	s.deliver(SessionErrorMsg{Code: code, Detail: detail})
}
