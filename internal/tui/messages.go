package tui

import "laudo/internal/domain"

// ListeningMsg mirrors EventSink.ListeningStateChanged.
type ListeningMsg struct {
	State  domain.ListeningState
	Reason domain.ListeningReason
}

// InterimMsg carries live partial text. Empty text clears the line.
type InterimMsg struct {
	Text       string
	Confidence int
}

// TranscriptMsg carries the full transcript after every change.
type TranscriptMsg struct {
	Text string
}

// ReportSavedMsg is sent when a report joins the saved list.
type ReportSavedMsg struct {
	Report domain.SavedReport
}

// SuggestionMsg reports a near miss of a voice command.
type SuggestionMsg struct {
	Utterance string
	Phrase    string
}

// SessionErrorMsg carries an error reported by the session.
type SessionErrorMsg struct {
	Code   domain.ErrorCode
	Detail string
}

// actionDoneMsg is returned by the commands that run session operations.
type actionDoneMsg struct {
	notice string
}

// clearNoticeMsg clears the notice line if it is still the one with seq.
type clearNoticeMsg struct {
	seq int
}
