package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"laudo/internal/bootstrap"
	"laudo/internal/config"
	"laudo/internal/domain"
	"laudo/internal/usecase"
)

const (
	eventListening  = "laudo:listening"
	eventInterim    = "laudo:interim"
	eventTranscript = "laudo:transcript"
	eventReport     = "laudo:report"
	eventSuggestion = "laudo:suggestion"
	eventError      = "laudo:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services bootstrap.Services
	session  *usecase.Session
	cfg      config.Config
	bootErr  error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.cfg = services.Config
	a.session = services.Session
	if !a.session.Supported() {
		a.ListeningStateChanged(domain.ListeningStateIdle, domain.ListeningReasonUnsupported)
		return
	}
	a.ListeningStateChanged(domain.ListeningStateIdle, domain.ListeningReasonMicCold)
}

func (a *App) shutdown(context.Context) {
	if a.session != nil {
		a.session.Stop()
	}
	_ = a.services.Close()
}

// StartListening starts continuous recognition.
func (a *App) StartListening() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	// the session reports start failures through SessionError itself
	if err := a.session.Start(a.ctx); err != nil {
		return a.session.Status(), err
	}
	return a.session.Status(), nil
}

// StopListening stops recognition. The transcript is kept.
func (a *App) StopListening() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.session.Stop()
	return a.session.Status(), nil
}

// ToggleListening backs the microphone button.
func (a *App) ToggleListening() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.session.Toggle(a.ctx); err != nil {
		return a.session.Status(), err
	}
	return a.session.Status(), nil
}

func (a *App) ClearTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.session.ClearTranscript()
	return nil
}

func (a *App) DeleteLastSentence() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.session.DeleteLastSentence()
	return nil
}

// SetTranscript stores text typed into the transcript area.
func (a *App) SetTranscript(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.session.SetTranscript(text)
	return nil
}

// SaveReport returns nil when the transcript is blank.
func (a *App) SaveReport() (*domain.SavedReport, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	report, ok := a.session.SaveReport()
	if !ok {
		return nil, nil
	}
	return &report, nil
}

func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.session.CopyTranscript(a.ctx)
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.session == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.ListeningStateIdle, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.ListeningStateIdle}
	}
	return a.session.Status()
}

func (a *App) GetTranscript() string {
	if a.session == nil {
		return ""
	}
	return a.session.Transcript()
}

func (a *App) GetSavedReports() []domain.SavedReport {
	if a.session == nil {
		return []domain.SavedReport{}
	}
	return a.session.SavedReports()
}

func (a *App) GetCommandHelp() []domain.CommandHelp {
	if a.session == nil {
		return []domain.CommandHelp{}
	}
	return a.session.CommandHelp()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"provider":         "Deepgram",
		"model":            a.cfg.Deepgram.Model,
		"language":         a.cfg.Deepgram.Language,
		"rulesFile":        a.cfg.Rules.Path,
		"vocabularyFile":   a.cfg.Vocabulary.Path,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.session == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// ListeningStateChanged emits listening transitions to the frontend.
func (a *App) ListeningStateChanged(state domain.ListeningState, reason domain.ListeningReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventListening, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// InterimResult emits the live partial text and its confidence.
func (a *App) InterimResult(text string, confidence int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventInterim, map[string]any{
		"text":       text,
		"confidence": confidence,
	})
}

func (a *App) TranscriptChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text})
}

func (a *App) ReportSaved(report domain.SavedReport) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventReport, report)
}

// CommandSuggested tells the user which command an utterance nearly matched.
func (a *App) CommandSuggested(utterance string, phrase string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSuggestion, map[string]string{
		"utterance": utterance,
		"phrase":    phrase,
		"message":   suggestionMessage(phrase),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func sessionReasonMessage(reason domain.ListeningReason) string {
	switch reason {
	case domain.ListeningReasonMicCold:
		return "Microfone desligado"
	case domain.ListeningReasonStarted:
		return "Ouvindo..."
	case domain.ListeningReasonStopped:
		return "Ditado pausado"
	case domain.ListeningReasonStreamRestarted:
		return "Reconhecimento reiniciado"
	case domain.ListeningReasonProviderFailed:
		return "Erro no reconhecimento de voz"
	case domain.ListeningReasonUnsupported:
		return "Reconhecimento de voz indisponível neste ambiente"
	case domain.ListeningReasonStartFailed:
		return "Não foi possível iniciar o reconhecimento"
	case domain.ListeningReasonRestartFailed:
		return "Não foi possível reiniciar o reconhecimento"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Falha ao iniciar"
	case domain.ErrorCodeUnsupported:
		return "Reconhecimento de voz não suportado"
	case domain.ErrorCodeProvider:
		return "Erro no reconhecimento de voz"
	case domain.ErrorCodeClipboard:
		return "Falha ao copiar para a área de transferência"
	default:
		if detail == "" {
			return "Erro desconhecido"
		}
		return detail
	}
}

func suggestionMessage(phrase string) string {
	return fmt.Sprintf("Você quis dizer %q?", phrase)
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
