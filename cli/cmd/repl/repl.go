package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/InspiredImpact/petuhlang/lang"
	"github.com/InspiredImpact/petuhlang/log"
)

// editDoneMsg is sent when an edited transcript ran successfully.
type editDoneMsg struct {
	session    *lang.Session
	transcript []string
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for another reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	contPrompt = "… "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode, or prefix with ':' in eval mode):

  help         Print this help
  list [GLOB]  List bindings, optionally only those matching GLOB
  edit         Edit the session transcript in $EDITOR and run it again
  clear        Clear screen
  quit         Exit REPL

Usage:
  Type a statement (function >> ..., pyclass >> ..., then >> ...) to run it
  Type any other expression to evaluate it
  A line with an unclosed bracket continues on the next line
  Press Tab / Shift-Tab to cycle through completions
  Use Up/Down arrows for history, Shift+Up/Shift+Down within the current mode
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func formatCommand(prompt, input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	newSession   func() *lang.Session
	input        textinput.Model
	session      *lang.Session
	out          *bytes.Buffer // receives then output of session
	logger       log.Logger
	history      *History
	pending      []string      // lines of an unfinished statement
	transcript   []string      // statements that ran successfully
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	preTabText   string        // input text before tab-cycling began
	evalText     string
	ctrlText     string
	historyIdx   int
	wordStart    int // byte offset of current word start
	wordEnd      int // byte offset of current word end
	suggIdx      int // selected candidate index
	preTabCursor int
	width        int // terminal width for ellipsization
	evalCursor   int
	ctrlCursor   int
	mode         inputMode
	tabActive    bool // whether user is tab-cycling
	quitting     bool
}

// Run starts the REPL. If script is not empty, it is run first and its
// bindings are available at the prompt. History is kept in cacheDir, or only
// in memory if cacheDir is empty.
func Run(
	ctx context.Context,
	script, cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.String("script", script),
	)

	out := new(bytes.Buffer)
	newSession := func() *lang.Session {
		return lang.NewSession(lang.WithLogger(logger), lang.WithOutput(out))
	}

	session := newSession()

	var transcript []string

	if script != "" {
		if _, err := session.Run(ctx, script); err != nil {
			return err
		}

		data, err := os.ReadFile(script)
		if err != nil {
			return err
		}

		transcript = strings.Split(strings.TrimRight(string(data), "\n"), "\n")

		_, _ = out.WriteTo(os.Stdout)
	}

	var histPath string
	if cacheDir != "" {
		histPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(histPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m := newModel(ctx, newSession, session, out, history, logger)
	m.transcript = transcript

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	newSession func() *lang.Session,
	session *lang.Session,
	out *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		newSession: newSession,
		input:      ti,
		session:    session,
		out:        out,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.session = msg.session
		m.transcript = msg.transcript
		m.pending = nil
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("bindings", m.session.Namespace().Len()),
		)

		return m, tea.Sequence(
			m.flushOutput(),
			tea.Println(resultStyle.Render("✔ session reloaded")),
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	viewingHistory := m.historyIdx < m.history.Len()
	funcCall := detectFunctionCall(input, m.input.Position())

	var hint string

	switch {
	case viewingHistory:
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case len(m.pending) > 0 && strings.TrimSpace(input) == "":
		hint = hintStyle.Render("Continue the statement, or Ctrl+C to discard it")

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			hint = hintStyle.Render("Type a statement or expression, or press Esc for commands")
		} else {
			hint = hintStyle.Render("Type: help, list, edit, clear, quit (press Esc to return)")
		}

	case funcCall.inCall && m.mode == modeEval:
		if signature, params := getSignature(m.session.Namespace(), funcCall.name); signature != "" {
			hint = renderSignatureHint(signature, params, funcCall.argIndex)
		} else if len(m.matches) > 0 {
			hint = renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, m.isFunction)
		}

	case len(m.matches) > 0:
		hint = renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, m.isFunction)
	}

	b.WriteString(hint)
	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.pending) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.pending = nil
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyStep(-1, false)

	case tea.KeyDown:
		return m.historyStep(1, false)

	case tea.KeyShiftUp:
		return m.historyStep(-1, true)

	case tea.KeyShiftDown:
		return m.historyStep(1, true)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl)
		}

		return m.switchToMode(modeEval)

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, ...) edits without
	// auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word in the input and moves the
// cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state. When
// autoConfirm is set and the typed word already equals the only candidate,
// the completion is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	input := strings.TrimSpace(line)

	if input == "" && len(m.pending) == 0 {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if m.mode == modeCtrl {
		_, _ = m.history.WriteWithMode(input, modeCtrl)
		m.historyIdx = m.history.Len()

		return m.executeCommand(input)
	}

	if len(m.pending) == 0 {
		if cmd, ok := strings.CutPrefix(input, ":"); ok {
			_, _ = m.history.WriteWithMode(cmd, modeCtrl)
			m.historyIdx = m.history.Len()

			return m.executeCommand(cmd)
		}
	}

	prompt := evalPrompt
	if len(m.pending) > 0 {
		prompt = contPrompt
	}

	echoCmd := tea.Println(formatCommand(prompt, line))

	m.pending = append(m.pending, line)

	src := strings.Join(m.pending, "\n")
	if lang.Incomplete(src) {
		m.input.Prompt = promptStyle.Render(contPrompt)

		return m, echoCmd
	}

	m.pending = nil
	m.input.Prompt = promptStyle.Render(evalPrompt)

	_, _ = m.history.WriteWithMode(strings.TrimSpace(src), modeEval)
	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", src))

	stmt, show := statement(src)

	result, err := m.session.ExecLine(m.ctxFunc(), stmt)
	if err != nil {
		return m, tea.Sequence(
			echoCmd,
			m.flushOutput(),
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.transcript = append(m.transcript, stmt)

	cmds := []tea.Cmd{echoCmd, m.flushOutput()}
	if show {
		cmds = append(cmds, tea.Println(resultStyle.Render(lang.FormatResult(result))))
	}

	return m, tea.Sequence(cmds...)
}

// statement returns the statement to run for src. A statement runs as
// written; any other input becomes a retrieve statement whose value is shown.
func statement(src string) (stmt string, show bool) {
	src = strings.TrimSpace(src)
	if lang.IsStatement(src) {
		return src, false
	}

	return "retrieve >> " + src, true
}

// flushOutput prints and discards whatever the session has written.
func (m model) flushOutput() tea.Cmd {
	if m.out == nil || m.out.Len() == 0 {
		return nil
	}

	text := strings.TrimRight(m.out.String(), "\n")
	m.out.Reset()

	return tea.Println(text)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		pattern := strings.Join(args, " ")

		list, err := m.listBindings(pattern)
		if err != nil {
			return m, tea.Sequence(echoCmd, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echoCmd, tea.Println(list))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editCommand{
		ctxFunc:    m.ctxFunc,
		newSession: m.newSession,
		transcript: strings.Join(m.transcript, "\n"),
		out:        m.out,
		logger:     m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.session == nil {
			return editCancelledMsg{}
		}

		return editDoneMsg{session: cmd.session, transcript: cmd.lines}
	})
}

// historyStep moves through history by step. With inMode set, entries
// from the other mode are skipped; otherwise the mode follows the entry.
func (m model) historyStep(step int, inMode bool) (model, tea.Cmd) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil {
			break
		}

		if inMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m, _ = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m, nil
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

func (m model) listBindings(pattern string) (string, error) {
	names, err := m.session.Namespace().Match(pattern)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	for _, name := range names {
		obj, _ := m.session.Namespace().Lookup(name)
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(obj)))
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// switchToMode switches to the given mode, keeping each mode's input.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		if len(m.pending) > 0 {
			m.input.Prompt = promptStyle.Render(contPrompt)
		}

		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
