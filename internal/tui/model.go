// Package tui is the terminal front end: one tab per feature, rendered from
// the feature sessions' state.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"lingod/internal/capability"
	"lingod/internal/summarize"
	"lingod/internal/translate"
)

type feature int

const (
	featTranslate feature = iota
	featSummarize
)

// changeMsg is sent whenever either session's state changed.
type changeMsg struct{}

type doneMsg struct {
	feature feature
	err     error
}

type detectDoneMsg struct{ err error }

type availabilityMsg struct {
	translator capability.Availability
	summarizer capability.Availability
}

// Options configure a Model.
type Options struct {
	Translator *translate.Session
	Summarizer *summarize.Session
	// Context bounds every invocation started from the UI.
	Context context.Context
}

// Model is the bubbletea model.
type Model struct {
	tr  *translate.Session
	sm  *summarize.Session
	ctx context.Context

	tab            feature
	trInput        textarea.Model
	smInput        textarea.Model
	ctxInput       textinput.Model
	editingContext bool

	spinner  spinner.Model
	progress progress.Model
	help     help.Model

	changes chan tea.Msg
	unsub   []func()
	samples [2]int

	trAvail capability.Availability
	smAvail capability.Availability

	width    int
	height   int
	quitting bool
}

// New builds the model and subscribes to both sessions.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tr := textarea.New()
	tr.Placeholder = "Text to translate..."
	tr.ShowLineNumbers = false
	tr.CharLimit = 4000
	tr.SetHeight(4)
	tr.Focus()

	sm := textarea.New()
	sm.Placeholder = "Text to summarize..."
	sm.ShowLineNumbers = false
	sm.CharLimit = 8000
	sm.SetHeight(6)

	ci := textinput.New()
	ci.Placeholder = "optional shared context"
	ci.Prompt = "context> "
	ci.PromptStyle = labelStyle
	ci.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Points

	m := Model{
		tr:       opts.Translator,
		sm:       opts.Summarizer,
		ctx:      ctx,
		trInput:  tr,
		smInput:  sm,
		ctxInput: ci,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		changes:  make(chan tea.Msg, 64),
	}
	notify := func() {
		select {
		case m.changes <- changeMsg{}:
		default:
			// a render is already queued; it reads the latest state
		}
	}
	m.unsub = append(m.unsub,
		m.tr.OnChange(func(translate.State) { notify() }),
		m.sm.OnChange(func(summarize.State) { notify() }),
	)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitChange(m.changes), m.availabilityCmd())
}

func waitChange(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) availabilityCmd() tea.Cmd {
	tr, sm, ctx := m.tr, m.sm, m.ctx
	return func() tea.Msg {
		actx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		var out availabilityMsg
		if a, err := tr.Manager().Availability(actx, tr.State().Config); err == nil {
			out.translator = a
		}
		if a, err := sm.Manager().Availability(actx, sm.State().Config); err == nil {
			out.summarizer = a
		}
		return out
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 6
		if w < 20 {
			w = 20
		}
		m.trInput.SetWidth(w)
		m.smInput.SetWidth(w)
		m.ctxInput.Width = w - 10
		m.progress.Width = w / 2
		m.help.Width = msg.Width
		return m, nil

	case changeMsg:
		return m, waitChange(m.changes)

	case doneMsg, detectDoneMsg:
		// results and notices already live on session state
		return m, nil

	case availabilityMsg:
		m.trAvail, m.smAvail = msg.translator, msg.summarizer
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}
	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		for _, u := range m.unsub {
			u()
		}
		return m, tea.Quit, true

	case key.Matches(msg, keys.Tab):
		if m.tab == featTranslate {
			m.tab = featSummarize
		} else {
			m.tab = featTranslate
		}
		m.editingContext = false
		m.focusInput()
		return m, nil, true

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil, true

	case key.Matches(msg, keys.Dismiss):
		if m.tab == featTranslate {
			m.tr.DismissNotice()
		} else {
			m.sm.DismissNotice()
		}
		return m, nil, true

	case key.Matches(msg, keys.Submit):
		return m, m.submitCmd(), true

	case key.Matches(msg, keys.Stream):
		if m.tab == featTranslate {
			m.tr.ToggleStreaming()
		} else {
			m.sm.ToggleStreaming()
		}
		return m, nil, true

	case key.Matches(msg, keys.Clear):
		if m.tab == featTranslate {
			m.tr.Clear()
		} else {
			m.sm.Clear()
		}
		m.syncInputs()
		return m, nil, true

	case key.Matches(msg, keys.Sample):
		i := m.samples[m.tab]
		if m.tab == featTranslate {
			m.tr.LoadSample(i % len(translate.Samples))
			m.samples[m.tab] = (i + 1) % len(translate.Samples)
		} else {
			m.sm.LoadSample(i % len(summarize.Samples))
			m.samples[m.tab] = (i + 1) % len(summarize.Samples)
		}
		m.syncInputs()
		return m, nil, true

	case key.Matches(msg, keys.Primary):
		if m.tab == featTranslate {
			m.tr.SetTarget(nextLanguage(m.tr.State().Config.TargetLanguage))
		} else {
			m.sm.SetType(nextType(m.sm.State().Config.Type))
		}
		return m, nil, true

	case key.Matches(msg, keys.Secondary):
		if m.tab == featTranslate {
			m.tr.SetSource(nextLanguage(m.tr.State().Config.SourceLanguage))
		} else {
			m.sm.SetLength(nextLength(m.sm.State().Config.Length))
		}
		return m, nil, true
	}

	if m.tab == featTranslate {
		switch {
		case key.Matches(msg, keys.Swap):
			m.tr.Swap()
			m.syncInputs()
			return m, nil, true
		case key.Matches(msg, keys.Detect):
			return m, m.detectCmd(), true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, keys.Format):
		f := capability.FormatMarkdown
		if m.sm.State().Config.Format == capability.FormatMarkdown {
			f = capability.FormatPlainText
		}
		m.sm.SetFormat(f)
		return m, nil, true
	case key.Matches(msg, keys.Focus):
		m.editingContext = !m.editingContext
		m.focusInput()
		return m, nil, true
	}
	return m, nil, false
}

// updateInput forwards msg to the focused text field and mirrors its value
// into the session.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.tab == featTranslate:
		m.trInput, cmd = m.trInput.Update(msg)
		if v := m.trInput.Value(); v != m.tr.State().Input {
			m.tr.SetInput(v)
		}
	case m.editingContext:
		m.ctxInput, cmd = m.ctxInput.Update(msg)
		if v := m.ctxInput.Value(); v != m.sm.State().Config.SharedContext {
			m.sm.SetContext(v)
		}
	default:
		m.smInput, cmd = m.smInput.Update(msg)
		if v := m.smInput.Value(); v != m.sm.State().Input {
			m.sm.SetInput(v)
		}
	}
	return m, cmd
}

func (m *Model) focusInput() {
	m.trInput.Blur()
	m.smInput.Blur()
	m.ctxInput.Blur()
	switch {
	case m.tab == featTranslate:
		m.trInput.Focus()
	case m.editingContext:
		m.ctxInput.Focus()
	default:
		m.smInput.Focus()
	}
}

// syncInputs copies session text back into the fields after intents that
// rewrite it (swap, clear, samples).
func (m *Model) syncInputs() {
	if v := m.tr.State().Input; v != m.trInput.Value() {
		m.trInput.SetValue(v)
	}
	st := m.sm.State()
	if st.Input != m.smInput.Value() {
		m.smInput.SetValue(st.Input)
	}
	if st.Config.SharedContext != m.ctxInput.Value() {
		m.ctxInput.SetValue(st.Config.SharedContext)
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctx := m.ctx
	if m.tab == featTranslate {
		if m.tr.State().Pending {
			return nil
		}
		tr := m.tr
		return func() tea.Msg {
			_, err := tr.Submit(ctx)
			return doneMsg{feature: featTranslate, err: err}
		}
	}
	if m.sm.State().Pending {
		return nil
	}
	sm := m.sm
	return func() tea.Msg {
		_, err := sm.Submit(ctx)
		return doneMsg{feature: featSummarize, err: err}
	}
}

func (m Model) detectCmd() tea.Cmd {
	if m.tr.State().Detecting {
		return nil
	}
	tr, ctx := m.tr, m.ctx
	return func() tea.Msg {
		_, err := tr.Detect(ctx)
		return detectDoneMsg{err: err}
	}
}

func nextLanguage(tag string) string {
	langs := translate.Languages
	for i, l := range langs {
		if l.Tag == tag {
			return langs[(i+1)%len(langs)].Tag
		}
	}
	return langs[0].Tag
}

var summaryTypes = []capability.SummaryType{
	capability.SummaryTLDR, capability.SummaryKeyPoints, capability.SummaryTeaser, capability.SummaryHeadline,
}

func nextType(t capability.SummaryType) capability.SummaryType {
	for i, v := range summaryTypes {
		if v == t {
			return summaryTypes[(i+1)%len(summaryTypes)]
		}
	}
	return summaryTypes[0]
}

var summaryLengths = []capability.SummaryLength{
	capability.LengthShort, capability.LengthMedium, capability.LengthLong,
}

func nextLength(l capability.SummaryLength) capability.SummaryLength {
	for i, v := range summaryLengths {
		if v == l {
			return summaryLengths[(i+1)%len(summaryLengths)]
		}
	}
	return summaryLengths[0]
}
