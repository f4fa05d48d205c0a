package domain

import (
	"math"
	"time"
)

// ListeningState models the dictation listening toggle.
type ListeningState string

const (
	ListeningStateIdle      ListeningState = "idle"
	ListeningStateListening ListeningState = "listening"
)

// ListeningReason provides a structured reason for state transitions.
type ListeningReason string

const (
	ListeningReasonMicCold         ListeningReason = "mic_cold"
	ListeningReasonStarted         ListeningReason = "listening_started"
	ListeningReasonStopped         ListeningReason = "listening_stopped"
	ListeningReasonStreamRestarted ListeningReason = "stream_restarted"
	ListeningReasonProviderFailed  ListeningReason = "provider_failed"
	ListeningReasonUnsupported     ListeningReason = "unsupported_environment"
	ListeningReasonStartFailed     ListeningReason = "start_failed"
	ListeningReasonRestartFailed   ListeningReason = "restart_failed"
)

// ErrorCode identifies errors reported to the UI.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeUnsupported ErrorCode = "unsupported_environment"
	ErrorCodeProvider    ErrorCode = "provider"
	ErrorCodeClipboard   ErrorCode = "clipboard"
)

// ActionKind tags the result of classifying a finalized utterance.
type ActionKind string

const (
	ActionLiteral            ActionKind = "literal"
	ActionClearAll           ActionKind = "clear_all"
	ActionDeleteLastSentence ActionKind = "delete_last_sentence"
	ActionSaveReport         ActionKind = "save_report"
)

// IsValid reports whether k is a known action kind.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionLiteral, ActionClearAll, ActionDeleteLastSentence, ActionSaveReport:
		return true
	default:
		return false
	}
}

// Action is what a finalized utterance resolves to. Text is only meaningful
// for ActionLiteral.
type Action struct {
	Kind ActionKind `json:"kind"`
	Text string     `json:"text,omitempty"`
}

// Literal returns an action that inserts text into the transcript.
func Literal(text string) Action {
	return Action{Kind: ActionLiteral, Text: text}
}

// Utterance is one recognition result emitted by a speech provider.
type Utterance struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
}

// ConfidencePercent returns the confidence rounded to an integer in [0, 100].
func (u Utterance) ConfidencePercent() int {
	percent := int(math.Round(u.Confidence * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// SavedReport is an immutable snapshot of the transcript.
type SavedReport struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShortID returns the last four characters of the ID for compact display.
func (r SavedReport) ShortID() string {
	if len(r.ID) <= 4 {
		return r.ID
	}
	return r.ID[len(r.ID)-4:]
}

// CommandHelp describes one voice command for display.
type CommandHelp struct {
	Phrase      string `json:"phrase"`
	Description string `json:"description"`
}

// Status summarizes the current runtime status.
type Status struct {
	State      ListeningState `json:"state"`
	Listening  bool           `json:"listening"`
	Supported  bool           `json:"supported"`
	Confidence int            `json:"confidence"`
	Reports    int            `json:"reports"`
	Message    string         `json:"message,omitempty"`
}
