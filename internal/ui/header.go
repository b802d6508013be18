package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skipper/internal/printer"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasStatus {
		return m.renderConnectingHeader(styles, bg)
	}

	content := m.buildStatusContent(styles, bg)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(1).
		Render(content)
}

// renderConnectingHeader shows the connecting/error state.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	target := ""
	if m.config != nil {
		target = m.config.PrinterAPI
	}

	if m.snapshot.LastError != nil {
		last := "soon"
		if !m.lastUpdated.IsZero() {
			last = m.lastUpdated.Format("15:04:05")
		}
		parts := []string{
			bg.Render("skipper", styles.Logo),
			bg.Render("PRINTER "+classifyConnectionError(m.snapshot.LastError), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
			bg.Render(last, styles.MutedText),
		}
		if target != "" {
			parts = append(parts, bg.Render("api", styles.FaintText)+bg.Space()+bg.Render(target, styles.MutedText))
		}
		if m.config != nil && m.config.LogFile != "" {
			parts = append(parts,
				bg.Render("logs", styles.FaintText)+bg.Space()+
					bg.Render(truncateMiddle(m.config.LogFile, 50), styles.MutedText))
		}
		return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, sep))
	}

	msg := "Connecting to printer..."
	if target != "" {
		msg = "Connecting to " + target + "..."
	}
	return styles.Header.Width(m.width).MaxHeight(1).Render(
		bg.Render("skipper", styles.Logo) + sep +
			bg.Render(msg, styles.WarningText.Bold(true)),
	)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < 100
	status := m.snapshot.Status

	var parts []string
	parts = append(parts, bg.Render("skipper", styles.Logo))

	parts = append(parts, bg.Render("● "+stateLabel(status.GcodeState), m.stateStyle(status.GcodeState, styles)))

	if job := status.JobName(); job != "" {
		maxJob := 40
		if compact {
			maxJob = 20
		}
		parts = append(parts, bg.Render(truncateMiddle(job, maxJob), styles.Text))
	}

	if status.IsPrinting() {
		parts = append(parts, bg.Render(fmt.Sprintf("%d%%", status.Percent), styles.AccentText))
		if status.TotalLayerNum > 0 {
			label := "Layer:"
			if compact {
				label = "L:"
			}
			parts = append(parts,
				bg.Render(label, styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d/%d", status.LayerNum, status.TotalLayerNum), styles.Text))
		}
		if rem := status.Remaining(); rem > 0 {
			parts = append(parts,
				bg.Render("ETA:", styles.MutedText)+bg.Space()+bg.Render(formatRemaining(rem), styles.Text))
		}
	}

	if n := len(status.SkippedObjects); n > 0 {
		parts = append(parts,
			bg.Render("Skipped:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", n), styles.WarningText))
	}

	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
	} else if m.snapshot.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		errText := truncate(fmt.Sprintf("%v", m.snapshot.LastError), maxErr)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(errText, styles.DangerText))
	}

	return bg.Join(parts, bg.Spaces(2))
}

func stateLabel(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func (m Model) stateStyle(state string, styles Styles) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case printer.StateRunning, printer.StatePrepare:
		return styles.SuccessText
	case printer.StatePause:
		return styles.WarningText.Bold(true)
	case printer.StateFailed:
		return styles.DangerText
	case printer.StateFinished:
		return styles.InfoText
	}
	return styles.MutedText
}

// formatRemaining renders a duration as "1h05m" or "12m".
func formatRemaining(d time.Duration) string {
	mins := int(d.Round(time.Minute) / time.Minute)
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	updated := m.snapshot.LastUpdated
	if updated.IsZero() {
		return ""
	}

	timeSince := time.Since(updated)
	timeStr := updated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	if m.skipper.IsOpen() {
		commands = []cmd{
			{"j/k", "Navigate"},
			{"Space", "Toggle"},
			{"Click", "Pick"},
			{"a", "Apply"},
			{"c", "Clear"},
			{"esc", "Close"},
			{"?", "More"},
		}
	} else {
		commands = []cmd{
			{"s", "Skip objects"},
			{"?", "More"},
			{"q", "Quit"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, sep))
}

// renderPrinter renders the main printer panel shown outside the modal.
func (m Model) renderPrinter() string {
	styles := m.theme.Styles()
	var b strings.Builder

	line := func(label, value string, style lipgloss.Style) {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Width(12).Render(label))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if !m.snapshot.HasStatus {
		b.WriteString(" " + styles.FaintText.Render("Waiting for printer status..."))
		return b.String()
	}

	status := m.snapshot.Status
	line("State", stateLabel(status.GcodeState), m.stateStyle(status.GcodeState, styles))
	if job := status.JobName(); job != "" {
		line("Job", truncateMiddle(job, max(m.width-16, 10)), styles.Text)
	}
	if file := strings.TrimSpace(status.GcodeFile); file != "" && file != status.JobName() {
		line("File", truncateMiddle(file, max(m.width-16, 10)), styles.FaintText)
	}
	if status.IsPrinting() {
		line("Progress", progressBar(status.Percent, min(max(m.width-24, 10), 40)), styles.AccentText)
		if status.TotalLayerNum > 0 {
			line("Layer", fmt.Sprintf("%d / %d", status.LayerNum, status.TotalLayerNum), styles.Text)
		}
		if rem := status.Remaining(); rem > 0 {
			line("Remaining", formatRemaining(rem), styles.Text)
		}
	}

	skipped := "none"
	if len(status.SkippedObjects) > 0 {
		ids := make([]string, len(status.SkippedObjects))
		for i, id := range status.SkippedObjects {
			ids[i] = fmt.Sprintf("%d", id)
		}
		skipped = strings.Join(ids, ", ")
	}
	line("Skipped", truncate(skipped, max(m.width-16, 10)), styles.WarningText)
	line("Metadata", m.metadataLabel(), styles.FaintText)

	b.WriteString("\n")
	if status.IsPrinting() {
		b.WriteString(" " + styles.AccentText.Render("s") + styles.MutedText.Render(" choose objects to skip"))
	} else {
		b.WriteString(" " + styles.FaintText.Render("No active print"))
	}
	b.WriteString("\n\n")
	b.WriteString(" " + m.renderToast())
	b.WriteString(m.renderLogLines())
	return b.String()
}

// renderLogLines shows the tail of our own log below the printer panel.
func (m Model) renderLogLines() string {
	if len(m.logLines) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString("\n\n ")
	b.WriteString(styles.MutedText.Render("Recent log"))
	for _, line := range m.logLines {
		style := styles.FaintText
		if strings.Contains(line, "failed") {
			style = styles.WarningText
		}
		b.WriteString("\n ")
		b.WriteString(style.Render(truncate(line, max(m.width-2, 0))))
	}
	return b.String()
}

func (m Model) metadataLabel() string {
	file := strings.TrimSpace(m.snapshot.Status.GcodeFile)
	switch {
	case file == "":
		return "-"
	case m.snapshot.MetadataFile != file:
		return "loading"
	case m.snapshot.MetadataError != nil && m.snapshot.Metadata == nil:
		return "unavailable: " + truncate(m.snapshot.MetadataError.Error(), 60)
	case m.snapshot.Metadata != nil:
		return fmt.Sprintf("%d plates", len(m.snapshot.Metadata.Plates))
	}
	return "loading"
}

// progressBar renders a fixed-width bar for percent in [0,100].
func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %d%%", percent)
}

// truncate truncates a string to max runes with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
