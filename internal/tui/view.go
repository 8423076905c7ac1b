package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lingod/internal/capability"
	"lingod/internal/manager"
	"lingod/internal/translate"
)

func (m Model) View() string {
	if m.quitting {
		return mutedStyle.Render("bye") + "\n"
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.tab == featTranslate {
		b.WriteString(m.translateView())
	} else {
		b.WriteString(m.summarizeView())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) header() string {
	tabs := []string{"Translate", "Summarize"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if feature(i) == m.tab {
			rendered[i] = activeTabStyle.Render(t)
		} else {
			rendered[i] = tabStyle.Render(t)
		}
	}
	avail := m.trAvail
	if m.tab == featSummarize {
		avail = m.smAvail
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("lingod"), strings.Join(rendered, " "))
	if avail != "" {
		line += "  " + availabilityBadge(avail)
	}
	return line
}

// availabilityBadge highlights a model that is usable without a download.
func availabilityBadge(a capability.Availability) string {
	if a.Usable() {
		return noticeStyle("success").Render("model on device")
	}
	return mutedStyle.Render("availability: " + string(a))
}

func (m Model) translateView() string {
	st := m.tr.State()
	if !st.Supported {
		return m.unsupported(st.Notice)
	}
	var b strings.Builder
	cfg := st.Config
	fmt.Fprintf(&b, "%s %s -> %s", labelStyle.Render("Languages:"),
		translate.LanguageName(cfg.SourceLanguage), translate.LanguageName(cfg.TargetLanguage))
	if st.Confidence > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (detected, %.0f%%)", st.Confidence*100)))
	}
	b.WriteString("  " + modeLabel(st.Streaming))
	if st.DetectorReady {
		b.WriteString("  " + mutedStyle.Render("detector ready"))
	}
	b.WriteString("\n")
	b.WriteString(m.downloadLine(st.Download, st.ModelReady))
	b.WriteString(borderStyle.Render(m.trInput.View()))
	b.WriteString("\n")
	b.WriteString(m.outputBox(st.Output, st.Partial, st.Pending || st.Detecting))
	b.WriteString(noticeLine(st.Notice))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("history: %d", len(st.History))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) summarizeView() string {
	st := m.sm.State()
	if !st.Supported {
		return m.unsupported(st.Notice)
	}
	var b strings.Builder
	cfg := st.Config
	fmt.Fprintf(&b, "%s %s · %s · %s  %s\n", labelStyle.Render("Summary:"),
		cfg.Type, cfg.Format, cfg.Length, modeLabel(st.Streaming))
	b.WriteString(m.downloadLine(st.Download, st.ModelReady))
	b.WriteString(borderStyle.Render(m.smInput.View()))
	b.WriteString("\n")
	b.WriteString(m.ctxInput.View())
	b.WriteString("\n")
	b.WriteString(m.outputBox(st.Output, st.Partial, st.Pending))
	b.WriteString(noticeLine(st.Notice))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("history: %d", len(st.History))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) unsupported(n *manager.Notice) string {
	s := noticeStyle(string(manager.NoticeError)).Render("This feature is not supported in this environment.")
	if n != nil && n.Description != "" {
		s += "\n" + mutedStyle.Render(n.Description)
	}
	return s + "\n"
}

func (m Model) downloadLine(d manager.DownloadState, ready bool) string {
	switch {
	case d.Active:
		return fmt.Sprintf("%s %s %.0f%%\n", mutedStyle.Render("downloading model"), m.progress.ViewAs(d.Percent/100), d.Percent)
	case ready:
		return outputStyle.Render("model ready") + "\n"
	}
	return ""
}

func (m Model) outputBox(output, partial string, busy bool) string {
	text := output
	if busy && partial != "" {
		text = partial
	}
	if busy {
		text = m.spinner.View() + " " + text
	}
	if strings.TrimSpace(text) == "" {
		text = mutedStyle.Render("output appears here")
	} else {
		text = outputStyle.Render(text)
	}
	return borderStyle.Render(text) + "\n"
}

func modeLabel(streaming bool) string {
	if streaming {
		return helpKeyStyle.Render("[streaming]")
	}
	return helpDescStyle.Render("[single-shot]")
}

func noticeLine(n *manager.Notice) string {
	if n == nil {
		return ""
	}
	s := noticeStyle(string(n.Level)).Render(n.Title)
	if n.Description != "" {
		s += " " + mutedStyle.Render(n.Description)
	}
	return s + "\n"
}
