// Package editor holds the dictated transcript and its editing operations.
package editor

import "strings"

// sentenceTerminators are the characters DeleteLastSentence cuts after.
// Abbreviations, decimals and quoted punctuation are not special-cased.
const sentenceTerminators = ".?!"

// Transcript is the accumulated dictation text of one session. It is not safe
// for concurrent use; the owning session serializes access.
type Transcript struct {
	text string
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Text returns the current transcript.
func (t *Transcript) Text() string {
	return t.text
}

// Append adds a separating space and fragment. The space is added even when
// the transcript is empty, so the first fragment carries a leading space.
func (t *Transcript) Append(fragment string) {
	t.text = t.text + " " + fragment
}

// DeleteLastSentence truncates the transcript right after the last sentence
// terminator, or clears it when there is none.
func (t *Transcript) DeleteLastSentence() {
	index := strings.LastIndexAny(t.text, sentenceTerminators)
	if index == -1 {
		t.text = ""
		return
	}
	t.text = t.text[:index+1]
}

// Clear resets the transcript.
func (t *Transcript) Clear() {
	t.text = ""
}

// Replace overwrites the transcript with text typed by the user.
func (t *Transcript) Replace(text string) {
	t.text = text
}
