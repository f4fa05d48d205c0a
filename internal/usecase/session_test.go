package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"laudo/internal/commands"
	"laudo/internal/domain"
	"laudo/internal/observe"
	"laudo/internal/ports"
	"laudo/internal/reports"
	"laudo/internal/rules"
)

func newTestSession(t *testing.T, provider *fakeProvider, clipboard *fakeClipboard, events *fakeEventSink, opts ...Option) *Session {
	t.Helper()

	dispatcher, err := commands.NewDispatcher(nil)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	corrector, err := rules.NewEngine("")
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return NewSession(provider, dispatcher, corrector, clipboard, events, Config{}, opts...)
}

func startListening(t *testing.T, session *Session) {
	t.Helper()
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
}

func TestSessionStartStop(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{stream}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)

	if status := session.Status(); status.State != domain.ListeningStateIdle || status.Listening {
		t.Fatalf("unexpected initial status: %+v", status)
	}

	startListening(t, session)
	startListening(t, session)
	if provider.callCount() != 1 {
		t.Fatalf("expected start while listening to be a no-op, got %d provider calls", provider.callCount())
	}
	if status := session.Status(); !status.Listening || !status.Supported {
		t.Fatalf("unexpected status: %+v", status)
	}

	session.Stop()
	session.Stop()
	eventually(t, func() bool { return stream.closeCount() == 1 })

	states := events.snapshotStates()
	if len(states) != 2 {
		t.Fatalf("expected 2 state transitions, got %+v", states)
	}
	if states[0].reason != domain.ListeningReasonStarted || states[1].reason != domain.ListeningReasonStopped {
		t.Fatalf("unexpected reasons: %+v", states)
	}
}

func TestSessionStopDoesNotWaitForStreamClose(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	stream.closeGate = make(chan struct{})
	defer close(stream.closeGate)
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stopped := make(chan struct{})
	go func() {
		session.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("stop blocked on stream close")
	}
	if session.Status().Listening {
		t.Fatalf("expected idle after stop")
	}
	eventually(t, func() bool { return stream.closeCount() == 1 })
	if events.lastState().reason != domain.ListeningReasonStopped {
		t.Fatalf("unexpected last state: %+v", events.lastState())
	}
}

func TestSessionToggle(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{supported: true, streams: []*fakeStream{newFakeStream()}}
	session := newTestSession(t, provider, &fakeClipboard{}, &fakeEventSink{})

	if err := session.Toggle(context.Background()); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !session.Status().Listening {
		t.Fatalf("expected listening after first toggle")
	}
	if err := session.Toggle(context.Background()); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if session.Status().Listening {
		t.Fatalf("expected idle after second toggle")
	}
}

func TestSessionParagraphCommandAfterText(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "Tórax:", Confidence: 0.9, IsFinal: true}
	stream.results <- domain.Utterance{Text: "novo parágrafo", Confidence: 0.95, IsFinal: true}

	eventually(t, func() bool { return events.lastTranscript() == " Tórax: \n\n" })
	if got := session.Transcript(); got != " Tórax: \n\n" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestSessionCorrectsDictatedText(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, &fakeEventSink{})
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "Nódulo radio opaco", Confidence: 0.8, IsFinal: true}

	eventually(t, func() bool { return session.Transcript() == " Nódulo radiopaco" })
}

func TestSessionInterimResultOnlyUpdatesConfidence(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "limpar tudo", Confidence: 0.874}

	eventually(t, func() bool { return len(events.snapshotInterims()) == 1 })
	interim := events.snapshotInterims()[0]
	if interim.text != "limpar tudo" || interim.confidence != 87 {
		t.Fatalf("unexpected interim event: %+v", interim)
	}
	if session.Status().Confidence != 87 {
		t.Fatalf("unexpected confidence: %d", session.Status().Confidence)
	}
	if session.Transcript() != "" || events.transcriptCount() != 0 {
		t.Fatalf("interim result must not change the transcript")
	}
}

func TestSessionVoiceCommandsEditTranscript(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "Pulmões livres.", IsFinal: true}
	stream.results <- domain.Utterance{Text: "Coração aumentado", IsFinal: true}
	stream.results <- domain.Utterance{Text: "apagar última frase", IsFinal: true}
	eventually(t, func() bool { return session.Transcript() == " Pulmões livres." })

	stream.results <- domain.Utterance{Text: "salvar laudo", IsFinal: true}
	eventually(t, func() bool { return len(events.snapshotReports()) == 1 })
	if session.Transcript() != "" {
		t.Fatalf("expected transcript cleared after save, got %q", session.Transcript())
	}
	if got := session.SavedReports()[0].Text; got != " Pulmões livres." {
		t.Fatalf("unexpected saved text: %q", got)
	}

	stream.results <- domain.Utterance{Text: "texto", IsFinal: true}
	stream.results <- domain.Utterance{Text: "Limpar Tudo", IsFinal: true}
	eventually(t, func() bool { return events.transcriptCount() >= 6 })
	if session.Transcript() != "" {
		t.Fatalf("expected transcript cleared, got %q", session.Transcript())
	}
}

func TestSessionSkipsBlankFinals(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, &fakeEventSink{})
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "  ", IsFinal: true}
	stream.results <- domain.Utterance{Text: "fim", IsFinal: true}

	eventually(t, func() bool { return session.Transcript() == " fim" })
}

func TestSessionSuggestsNearMissCommand(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "novo paragrafo", IsFinal: true}

	eventually(t, func() bool { return len(events.snapshotSuggestions()) == 1 })
	if got := events.snapshotSuggestions()[0]; got.phrase != "novo parágrafo" || got.utterance != "novo paragrafo" {
		t.Fatalf("unexpected suggestion: %+v", got)
	}
	if session.Transcript() != " novo paragrafo" {
		t.Fatalf("suggestion must not change dispatch, got %q", session.Transcript())
	}
}

func TestSessionRestartsStreamThatEndsWhileListening(t *testing.T) {
	t.Parallel()

	first := newFakeStream()
	second := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{first, second}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)
	startListening(t, session)

	first.end(nil)

	eventually(t, func() bool { return provider.callCount() == 2 && events.lastState().reason == domain.ListeningReasonStreamRestarted })
	if !session.Status().Listening {
		t.Fatalf("expected session to stay listening across restart")
	}

	second.results <- domain.Utterance{Text: "após reinício", IsFinal: true}
	eventually(t, func() bool { return session.Transcript() == " após reinício" })
}

func TestSessionRestartHonoursDelay(t *testing.T) {
	t.Parallel()

	first := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{first, newFakeStream()}}
	dispatcher, _ := commands.NewDispatcher(nil)
	corrector, _ := rules.NewEngine("")
	session := NewSession(provider, dispatcher, corrector, &fakeClipboard{}, &fakeEventSink{}, Config{RestartDelay: 30 * time.Millisecond})
	startListening(t, session)

	ended := time.Now()
	first.end(nil)

	eventually(t, func() bool { return provider.callCount() == 2 })
	if elapsed := time.Since(ended); elapsed < 30*time.Millisecond {
		t.Fatalf("restart happened after %v, before the configured delay", elapsed)
	}
}

func TestSessionNoRestartAfterStop(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{stream, newFakeStream()}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)
	startListening(t, session)

	session.Stop()
	stream.end(nil)

	eventually(t, stream.waited)
	time.Sleep(10 * time.Millisecond)
	if provider.callCount() != 1 {
		t.Fatalf("expected no restart after stop, got %d provider calls", provider.callCount())
	}
	if events.lastState().reason != domain.ListeningReasonStopped {
		t.Fatalf("unexpected last state: %+v", events.lastState())
	}
}

func TestSessionDropsLateResultsAfterStop(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true, streams: []*fakeStream{stream}}, &fakeClipboard{}, events)
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "antes", IsFinal: true}
	eventually(t, func() bool { return session.Transcript() == " antes" })

	session.Stop()
	stream.results <- domain.Utterance{Text: "depois", IsFinal: true}
	stream.results <- domain.Utterance{Text: "parcial", Confidence: 0.5}
	stream.end(nil)

	eventually(t, stream.waited)
	if session.Transcript() != " antes" {
		t.Fatalf("late result changed transcript: %q", session.Transcript())
	}
	if len(events.snapshotInterims()) != 0 {
		t.Fatalf("late interim result was delivered: %+v", events.snapshotInterims())
	}
}

func TestSessionProviderErrorGoesIdle(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{stream, newFakeStream()}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)
	startListening(t, session)

	stream.end(errors.New("socket reset"))

	eventually(t, func() bool { return events.lastState().reason == domain.ListeningReasonProviderFailed })
	if provider.callCount() != 1 {
		t.Fatalf("provider error must not restart, got %d calls", provider.callCount())
	}

	state := events.lastState()
	if state.state != domain.ListeningStateIdle || state.reason != domain.ListeningReasonProviderFailed {
		t.Fatalf("unexpected last state: %+v", state)
	}
	errs := events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeProvider {
		t.Fatalf("expected provider error event, got %+v", errs)
	}
}

func TestSessionStartFailureStaysIdle(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{supported: true, err: errors.New("dial failed")}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)

	err := session.Start(context.Background())
	if err == nil {
		t.Fatalf("expected start error")
	}
	if session.Status().Listening {
		t.Fatalf("expected idle after failed start")
	}
	if events.lastState().reason != domain.ListeningReasonStartFailed {
		t.Fatalf("unexpected last state: %+v", events.lastState())
	}
	if errs := events.snapshotErrors(); len(errs) != 1 || errs[0].code != domain.ErrorCodeProvider {
		t.Fatalf("expected provider error event, got %+v", errs)
	}
}

func TestSessionRestartFailureGoesIdle(t *testing.T) {
	t.Parallel()

	stream := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{stream}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)
	startListening(t, session)

	stream.end(nil)

	eventually(t, func() bool { return events.lastState().reason == domain.ListeningReasonRestartFailed })
	if session.Status().Listening {
		t.Fatalf("expected idle after failed restart")
	}
}

func TestSessionUnsupportedEnvironment(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{supported: false, streams: []*fakeStream{newFakeStream()}}
	events := &fakeEventSink{}
	session := newTestSession(t, provider, &fakeClipboard{}, events)

	if session.Supported() {
		t.Fatalf("expected unsupported session")
	}
	err := session.Start(context.Background())
	if !errors.Is(err, ErrUnsupportedEnvironment) {
		t.Fatalf("expected ErrUnsupportedEnvironment, got %v", err)
	}
	if provider.callCount() != 0 {
		t.Fatalf("provider must not be started")
	}
	if errs := events.snapshotErrors(); len(errs) != 1 || errs[0].code != domain.ErrorCodeUnsupported {
		t.Fatalf("expected unsupported error event, got %+v", errs)
	}
}

func TestSessionSaveReportIgnoresBlankTranscript(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true}, &fakeClipboard{}, events)

	session.SetTranscript("   \n")
	if _, ok := session.SaveReport(); ok {
		t.Fatalf("expected blank save to be ignored")
	}
	if len(session.SavedReports()) != 0 {
		t.Fatalf("expected no reports")
	}
	if session.Transcript() != "   \n" {
		t.Fatalf("blank save must leave the transcript alone, got %q", session.Transcript())
	}
}

func TestSessionSaveReportUsesRecorderClock(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, time.July, 1, 9, 30, 0, 0, time.UTC)
	recorder := reports.NewRecorder(reports.WithClock(func() time.Time { return createdAt }))
	session := newTestSession(t, &fakeProvider{supported: true}, &fakeClipboard{}, &fakeEventSink{}, WithRecorder(recorder))

	session.SetTranscript("Exame normal.")
	report, ok := session.SaveReport()
	if !ok {
		t.Fatalf("expected save to succeed")
	}
	if report.Date != "01/07/2024, 09:30:00" || report.Text != "Exame normal." {
		t.Fatalf("unexpected report: %+v", report)
	}
	if session.Transcript() != "" || session.Status().Reports != 1 {
		t.Fatalf("unexpected session after save: %q %+v", session.Transcript(), session.Status())
	}
}

func TestSessionCountsInsertCommandMatchingUtteranceAsCommand(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	dispatcher, err := commands.NewDispatcher([]commands.Rule{{Phrase: "normal", Action: domain.Literal("normal")}})
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	corrector, err := rules.NewEngine("")
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	stream := newFakeStream()
	provider := &fakeProvider{supported: true, streams: []*fakeStream{stream}}
	session := NewSession(provider, dispatcher, corrector, &fakeClipboard{}, &fakeEventSink{}, Config{}, WithMetrics(metrics))
	startListening(t, session)

	stream.results <- domain.Utterance{Text: "normal", IsFinal: true}
	eventually(t, func() bool { return session.Transcript() == " normal" })

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	kinds := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "laudo.utterances" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				kind, _ := dp.Attributes.Value("kind")
				kinds[kind.AsString()] += dp.Value
			}
		}
	}
	if kinds["command"] != 1 || kinds["text"] != 0 {
		t.Fatalf("expected the insert command to count as a command, got %v", kinds)
	}
}

func TestSessionManualEdits(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	session := newTestSession(t, &fakeProvider{supported: true}, &fakeClipboard{}, events)

	session.SetTranscript("Primeira. Segunda")
	session.DeleteLastSentence()
	if session.Transcript() != "Primeira." {
		t.Fatalf("unexpected transcript: %q", session.Transcript())
	}
	session.ClearTranscript()
	if session.Transcript() != "" {
		t.Fatalf("expected empty transcript")
	}
	if events.transcriptCount() != 3 {
		t.Fatalf("expected one transcript event per edit, got %d", events.transcriptCount())
	}
}

func TestSessionCopyTranscript(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{}
	session := newTestSession(t, &fakeProvider{supported: true}, clipboard, &fakeEventSink{})

	session.SetTranscript(" Tórax: \n\nnormal")
	if err := session.CopyTranscript(context.Background()); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if clipboard.lastText != " Tórax: \n\nnormal" {
		t.Fatalf("clipboard did not receive the transcript verbatim: %q", clipboard.lastText)
	}
}

func TestSessionCopyTranscriptFailure(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	clipboard := &fakeClipboard{err: errors.New("clipboard down")}
	session := newTestSession(t, &fakeProvider{supported: true}, clipboard, events)
	session.SetTranscript("texto")

	err := session.CopyTranscript(context.Background())
	if err == nil || !errors.Is(err, clipboard.err) {
		t.Fatalf("expected wrapped clipboard error, got %v", err)
	}
	if errs := events.snapshotErrors(); len(errs) != 1 || errs[0].code != domain.ErrorCodeClipboard {
		t.Fatalf("expected clipboard error event, got %+v", errs)
	}
	if session.Transcript() != "texto" {
		t.Fatalf("transcript must be untouched")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

type fakeProvider struct {
	mu        sync.Mutex
	supported bool
	streams   []*fakeStream
	err       error
	calls     int
}

func (f *fakeProvider) Supported() bool { return f.supported }

func (f *fakeProvider) StartStreaming(_ context.Context) (ports.RecognitionStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.streams) {
		return nil, errors.New("no stream configured")
	}
	return f.streams[f.calls-1], nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStream struct {
	results chan domain.Utterance

	// closeGate, when set, holds Close until it is closed.
	closeGate chan struct{}

	mu         sync.Mutex
	waitErr    error
	ended      bool
	waitCalls  int
	closeCalls int
}

func newFakeStream() *fakeStream {
	return &fakeStream{results: make(chan domain.Utterance, 16)}
}

func (f *fakeStream) Results() <-chan domain.Utterance { return f.results }

// end finishes the stream the way a provider does: results close, then Wait
// reports err.
func (f *fakeStream) end(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	f.ended = true
	f.waitErr = err
	close(f.results)
}

func (f *fakeStream) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waitCalls++
	return f.waitErr
}

// Close records the call but leaves results open so tests can deliver late
// results.
func (f *fakeStream) Close() error {
	f.mu.Lock()
	f.closeCalls++
	f.mu.Unlock()
	if f.closeGate != nil {
		<-f.closeGate
	}
	return nil
}

func (f *fakeStream) waited() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waitCalls > 0
}

func (f *fakeStream) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

type fakeClipboard struct {
	lastText string
	err      error
}

func (f *fakeClipboard) SetText(_ context.Context, text string) error {
	f.lastText = text
	return f.err
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	interims    []interimEvent
	transcripts []string
	reports     []domain.SavedReport
	suggestions []suggestionEvent
	errors      []errEvent
}

type stateEvent struct {
	state  domain.ListeningState
	reason domain.ListeningReason
}

type interimEvent struct {
	text       string
	confidence int
}

type suggestionEvent struct {
	utterance string
	phrase    string
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) ListeningStateChanged(state domain.ListeningState, reason domain.ListeningReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) InterimResult(text string, confidence int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interims = append(f.interims, interimEvent{text: text, confidence: confidence})
}

func (f *fakeEventSink) TranscriptChanged(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
}

func (f *fakeEventSink) ReportSaved(report domain.SavedReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
}

func (f *fakeEventSink) CommandSuggested(utterance string, phrase string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = append(f.suggestions, suggestionEvent{utterance: utterance, phrase: phrase})
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) lastState() stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return stateEvent{}
	}
	return f.states[len(f.states)-1]
}

func (f *fakeEventSink) snapshotInterims() []interimEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interimEvent
	for _, event := range f.interims {
		// finals clear the interim line with an empty text
		if event.text != "" {
			out = append(out, event)
		}
	}
	return out
}

func (f *fakeEventSink) lastTranscript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transcripts) == 0 {
		return ""
	}
	return f.transcripts[len(f.transcripts)-1]
}

func (f *fakeEventSink) transcriptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transcripts)
}

func (f *fakeEventSink) snapshotReports() []domain.SavedReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SavedReport, len(f.reports))
	copy(out, f.reports)
	return out
}

func (f *fakeEventSink) snapshotSuggestions() []suggestionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]suggestionEvent, len(f.suggestions))
	copy(out, f.suggestions)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}
