// Package tui is the terminal shell: a Bubble Tea program driving one
// dictation session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"laudo/internal/domain"
)

const (
	noticeTimeout  = 4 * time.Second
	reportsVisible = 8
)

// Session is the part of usecase.Session the terminal shell drives.
type Session interface {
	Toggle(ctx context.Context) error
	Stop()
	SaveReport() (domain.SavedReport, bool)
	CopyTranscript(ctx context.Context) error
	ClearTranscript()
	DeleteLastSentence()
	Status() domain.Status
	Transcript() string
	SavedReports() []domain.SavedReport
	CommandHelp() []domain.CommandHelp
}

// Model is the root bubbletea model. Session mutations run inside commands
// because the session delivers its events through Program.Send, which needs
// the update loop to be free.
type Model struct {
	ctx     context.Context
	session Session

	// listening state
	listening  bool
	supported  bool
	statusText string

	// dictation
	transcript string
	interim    string
	confidence int
	reports    []domain.SavedReport
	help       []domain.CommandHelp

	// notices
	notice      string
	noticeIsErr bool
	noticeSeq   int

	// UI state
	width      int
	height     int
	showHelp   bool
	scrollBack int
}

// New snapshots the session; it must run before the program starts.
func New(ctx context.Context, session Session) Model {
	status := session.Status()
	m := Model{
		ctx:        ctx,
		session:    session,
		listening:  status.Listening,
		supported:  status.Supported,
		confidence: status.Confidence,
		transcript: session.Transcript(),
		reports:    session.SavedReports(),
		help:       session.CommandHelp(),
		statusText: reasonText(domain.ListeningReasonMicCold),
	}
	if !m.supported {
		m.statusText = reasonText(domain.ListeningReasonUnsupported)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ListeningMsg:
		m.listening = msg.State == domain.ListeningStateListening
		m.statusText = reasonText(msg.Reason)
		if !m.listening {
			m.interim = ""
		}
		return m, nil

	case InterimMsg:
		m.interim = msg.Text
		m.confidence = msg.Confidence
		return m, nil

	case TranscriptMsg:
		m.transcript = msg.Text
		m.scrollBack = 0
		return m, nil

	case ReportSavedMsg:
		m.reports = append(m.reports, msg.Report)
		return m.setNotice(fmt.Sprintf("Laudo #%s salvo", msg.Report.ShortID()), false)

	case SuggestionMsg:
		return m.setNotice(fmt.Sprintf("Você quis dizer %q?", msg.Phrase), false)

	case SessionErrorMsg:
		return m.setNotice(errorText(msg.Code, msg.Detail), true)

	case actionDoneMsg:
		if msg.notice == "" {
			return m, nil
		}
		return m.setNotice(msg.notice, false)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		return m, tea.Sequence(m.stopCmd(), tea.Quit)

	case KeyToggle:
		if !m.supported {
			return m.setNotice(reasonText(domain.ListeningReasonUnsupported), true)
		}
		return m, m.toggleCmd()

	case KeySave:
		return m, m.saveCmd()

	case KeyCopy:
		return m, m.copyCmd()

	case KeyClear:
		return m, m.run(m.session.ClearTranscript)

	case KeyDelete:
		return m, m.run(m.session.DeleteLastSentence)

	case KeyHelp:
		m.showHelp = !m.showHelp
		return m, nil

	case KeyScrollUp:
		m.scrollBack++
		return m, nil

	case KeyScrollDown:
		if m.scrollBack > 0 {
			m.scrollBack--
		}
		return m, nil
	}

	return m, nil
}

// toggleCmd starts or stops listening. Failures arrive as SessionErrorMsg.
func (m Model) toggleCmd() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		_ = session.Toggle(ctx)
		return actionDoneMsg{}
	}
}

func (m Model) stopCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Stop()
		return actionDoneMsg{}
	}
}

func (m Model) saveCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if _, ok := session.SaveReport(); !ok {
			return actionDoneMsg{notice: "Nada para salvar"}
		}
		return actionDoneMsg{}
	}
}

// copyCmd reports success only; the session reports clipboard failures.
func (m Model) copyCmd() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		if err := session.CopyTranscript(ctx); err != nil {
			return actionDoneMsg{}
		}
		return actionDoneMsg{notice: "Laudo copiado"}
	}
}

func (m Model) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return actionDoneMsg{}
	}
}

func (m Model) setNotice(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	m.noticeIsErr = isErr
	seq := m.noticeSeq
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Iniciando..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderMainContent())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderInterim())
	sections = append(sections, m.renderNotice())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("LAUDO")

	var dot string
	if m.listening {
		dot = listeningStyle.Render("● OUVINDO")
	} else {
		dot = idleStyle.Render("○ PAUSADO")
	}

	var confidence string
	if m.listening || m.confidence > 0 {
		confidence = "  " + statusStyle.Render("confiança ") + confidenceStyle(m.confidence).Render(fmt.Sprintf("%d%%", m.confidence))
	}

	return title + "  " + dot + confidence + "  " + statusStyle.Render(m.statusText)
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// header, two dividers, interim, notice, footer
	return max(5, m.height-6)
}

func (m Model) sidePanelWidth() int {
	return max(24, m.width*32/100)
}

func (m Model) renderMainContent() string {
	height := m.contentHeight()
	sideW := m.sidePanelWidth()
	mainW := max(20, m.width-sideW-3)

	left := m.renderTranscriptPanel(mainW, height)
	right := m.renderSidePanel(sideW, height)

	leftBlock := lipgloss.NewStyle().Width(mainW).Render(strings.Join(left, "\n"))
	divider := dividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBlock, " ", divider, " ", strings.Join(right, "\n"))
}

func (m Model) renderTranscriptPanel(width, height int) []string {
	lines := []string{panelTitleStyle.Render("LAUDO ATUAL")}
	body := height - 1

	if strings.TrimSpace(m.transcript) == "" {
		lines = append(lines, "")
		if m.supported {
			lines = append(lines, dimStyle.Render("  Pressione Espaço e comece a ditar"))
		} else {
			lines = append(lines, dimStyle.Render("  Configure DEEPGRAM_API_KEY e o ffmpeg para ditar"))
		}
		return padLines(lines, height)
	}

	wrapped := wrapText(m.transcript, width)
	end := len(wrapped) - m.scrollBack
	if end < min(body, len(wrapped)) {
		end = min(body, len(wrapped))
	}
	start := max(0, end-body)
	lines = append(lines, wrapped[start:end]...)
	return padLines(lines, height)
}

func (m Model) renderSidePanel(width, height int) []string {
	if m.showHelp {
		lines := []string{panelTitleStyle.Render("COMANDOS DE VOZ")}
		for _, h := range m.help {
			lines = append(lines, truncateToWidth("• "+h.Phrase, width))
			if h.Description != "" {
				lines = append(lines, dimStyle.Render(truncateToWidth("  "+h.Description, width)))
			}
		}
		return padLines(lines, height)
	}

	lines := []string{panelTitleStyle.Render(fmt.Sprintf("LAUDOS SALVOS (%d)", len(m.reports)))}
	if len(m.reports) == 0 {
		lines = append(lines, dimStyle.Render("  Nenhum laudo salvo"))
		return padLines(lines, height)
	}

	// oldest first, so the latest save sits at the bottom
	start := max(0, len(m.reports)-reportsVisible)
	for _, r := range m.reports[start:] {
		lines = append(lines, dimStyle.Render("#"+r.ShortID()+" "+r.Date))
		preview := strings.Join(strings.Fields(r.Text), " ")
		lines = append(lines, truncateToWidth("  "+preview, width))
	}
	return padLines(lines, height)
}

func (m Model) renderInterim() string {
	if m.interim == "" {
		return ""
	}
	return interimStyle.Render(truncateToWidth("… "+m.interim, m.width))
}

func (m Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	if m.noticeIsErr {
		return errorStyle.Render(m.notice)
	}
	return noticeStyle.Render(m.notice)
}

func (m Model) renderFooter() string {
	var parts []string
	if m.listening {
		parts = append(parts, footerKeyStyle.Render("Espaço")+footerDescStyle.Render(" Pausar"))
	} else {
		parts = append(parts, footerKeyStyle.Render("Espaço")+footerDescStyle.Render(" Ditar"))
	}
	parts = append(parts, footerKeyStyle.Render("s")+footerDescStyle.Render(" Salvar"))
	parts = append(parts, footerKeyStyle.Render("c")+footerDescStyle.Render(" Copiar"))
	parts = append(parts, footerKeyStyle.Render("d")+footerDescStyle.Render(" Apagar frase"))
	parts = append(parts, footerKeyStyle.Render("x")+footerDescStyle.Render(" Limpar"))
	parts = append(parts, footerKeyStyle.Render("?")+footerDescStyle.Render(" Comandos"))
	parts = append(parts, footerKeyStyle.Render("q")+footerDescStyle.Render(" Sair"))
	return strings.Join(parts, "  ")
}

func reasonText(reason domain.ListeningReason) string {
	switch reason {
	case domain.ListeningReasonMicCold:
		return "Microfone desligado"
	case domain.ListeningReasonStarted:
		return "Ouvindo"
	case domain.ListeningReasonStopped:
		return "Ditado pausado"
	case domain.ListeningReasonStreamRestarted:
		return "Reconhecimento reiniciado"
	case domain.ListeningReasonProviderFailed:
		return "Erro no reconhecimento"
	case domain.ListeningReasonUnsupported:
		return "Reconhecimento de voz indisponível"
	case domain.ListeningReasonStartFailed:
		return "Falha ao iniciar o reconhecimento"
	case domain.ListeningReasonRestartFailed:
		return "Falha ao reiniciar o reconhecimento"
	default:
		return string(reason)
	}
}

func errorText(code domain.ErrorCode, detail string) string {
	var prefix string
	switch code {
	case domain.ErrorCodeUnsupported:
		prefix = "Reconhecimento de voz não suportado"
	case domain.ErrorCodeProvider:
		prefix = "Erro no reconhecimento"
	case domain.ErrorCodeClipboard:
		prefix = "Falha ao copiar"
	case domain.ErrorCodeStartup:
		prefix = "Falha ao iniciar"
	default:
		prefix = "Erro"
	}
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}

// Helpers

func padLines(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}

func truncateToWidth(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

// wrapText wraps on word boundaries and keeps the transcript's line breaks,
// including the empty line of a paragraph break.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
