package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skipper/internal/skip"
)

// Skip modal layout. Rows above the preview: header, command bar, title,
// status line and a spacer. Rows below: spacer, apply bar and toast.
const (
	skipTopRows    = 5
	skipBottomRows = 3
	skipLeftMargin = 1
	listGap        = 2
	listMinWidth   = 24
	listMaxWidth   = 40
)

// skipLayout places the preview and the object list on screen.
type skipLayout struct {
	previewLeft int
	previewTop  int
	cols        int
	rows        int

	listLeft    int
	listTop     int
	listWidth   int
	listVisible int
	listOffset  int
}

// geometry returns the hit-test geometry for the preview in cell units.
func (l skipLayout) geometry(pm *skip.PickMap) skip.CanvasGeometry {
	g := skip.CanvasGeometry{
		Left:          float64(l.previewLeft),
		Top:           float64(l.previewTop),
		DisplayWidth:  float64(l.cols),
		DisplayHeight: float64(l.rows),
	}
	if pm != nil {
		g.BufferWidth, g.BufferHeight = pm.Width, pm.Height
	}
	return g
}

func (l skipLayout) inPreview(x, y int) bool {
	return x >= l.previewLeft && x < l.previewLeft+l.cols &&
		y >= l.previewTop && y < l.previewTop+l.rows
}

// listRow maps a screen position to an index into the object rows.
func (l skipLayout) listRow(x, y, count int) (int, bool) {
	if x < l.listLeft || x >= l.listLeft+l.listWidth {
		return 0, false
	}
	i := y - l.listTop
	if i < 0 || i >= l.listVisible {
		return 0, false
	}
	i += l.listOffset
	if i >= count {
		return 0, false
	}
	return i, true
}

func (m Model) skipLayout() skipLayout {
	height := max(m.height-skipTopRows-skipBottomRows, 1)
	listWidth := min(max(m.width/3, listMinWidth), listMaxWidth)
	maxCols := m.width - skipLeftMargin - listGap - listWidth - 1

	l := skipLayout{
		previewLeft: skipLeftMargin,
		previewTop:  skipTopRows,
		listTop:     skipTopRows,
		listWidth:   listWidth,
		listVisible: height,
	}
	if pm := m.skipper.PickMap(); pm != nil {
		l.cols, l.rows = fitPreview(pm.Width, pm.Height, maxCols, height)
	} else {
		l.cols, l.rows = max(min(maxCols, 2*height), 0), height
	}
	l.listLeft = l.previewLeft + l.cols + listGap
	if m.cursor >= l.listVisible {
		l.listOffset = m.cursor - l.listVisible + 1
	}
	return l
}

// openSkip shows the modal and resolves the active plate.
func (m Model) openSkip() (tea.Model, tea.Cmd) {
	m.skipper.Open()
	m.cursor = 0
	m.confirmArmed = false
	cmd := m.syncSkip()
	return m, cmd
}

// syncSkip pushes the latest snapshot into the controller and starts a
// pick-map load when the active plate needs one.
func (m *Model) syncSkip() tea.Cmd {
	if !m.skipper.IsOpen() {
		return nil
	}
	in := skip.Input{}
	if m.snapshot.HasStatus {
		in.Status = m.snapshot.Status
		// Metadata fetched for a previous file must not resolve the new one.
		if strings.TrimSpace(m.snapshot.MetadataFile) == strings.TrimSpace(in.Status.GcodeFile) {
			in.Metadata = m.snapshot.Metadata
			in.MetadataVersion = m.snapshot.MetadataVersion
		}
	}
	url := m.skipper.Sync(in)
	m.clampCursor()
	if url == "" {
		return nil
	}
	return loadPickCmd(m.ctx, m.decoder, url)
}

func (m *Model) clampCursor() {
	n := len(m.skipper.Rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// handleSkipKey processes keyboard input while the modal is open.
func (m Model) handleSkipKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Apply) {
		return m.apply()
	}
	m.confirmArmed = false

	rows := m.skipper.Rows()
	switch {
	case key.Matches(msg, m.keys.CloseSkip):
		m.skipper.Close()
		m.cursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(rows)-1, 0)
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(rows) {
			cmd := m.toggle(rows[m.cursor].ID)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Clear):
		m.skipper.ClearSelection()
	}
	return m, nil
}

// handleMouse routes clicks in the modal to the preview or the list.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.skipper.IsOpen() || m.showHelp {
		return m, nil
	}
	rows := m.skipper.Rows()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
	default:
		return m, nil
	}
	m.confirmArmed = false

	layout := m.skipLayout()
	if layout.inPreview(msg.X, msg.Y) {
		pm := m.skipper.PickMap()
		geom := layout.geometry(pm)
		x := float64(msg.X) + 0.5
		id, err := m.skipper.Click(x, clickRow(pm, geom, x, msg.Y), geom)
		if id == 0 {
			return m, nil
		}
		m.moveCursorTo(id)
		if err != nil {
			cmd := m.showToast(toggleErrorText(err, m.skipper.Availability()), toastWarn)
			return m, cmd
		}
		return m, nil
	}
	if i, ok := layout.listRow(msg.X, msg.Y, len(rows)); ok {
		m.cursor = i
		cmd := m.toggle(rows[i].ID)
		return m, cmd
	}
	return m, nil
}

func (m *Model) moveCursorTo(id int) {
	for i, row := range m.skipper.Rows() {
		if row.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *Model) toggle(id int) tea.Cmd {
	if err := m.skipper.Toggle(id); err != nil {
		return m.showToast(toggleErrorText(err, m.skipper.Availability()), toastWarn)
	}
	return nil
}

func toggleErrorText(err error, avail skip.Availability) string {
	switch {
	case errors.Is(err, skip.ErrSelectionInvalid):
		return "At least one object must keep printing"
	case errors.Is(err, skip.ErrNotAvailable):
		return avail.StatusLine()
	}
	return err.Error()
}

// apply sends the pending selection. With confirmation enabled the first
// press only arms the action.
func (m Model) apply() (tea.Model, tea.Cmd) {
	if m.applying {
		cmd := m.showToast("Skip command already in progress", toastWarn)
		return m, cmd
	}
	ids, avail, err := m.skipper.PrepareApply()
	if err != nil {
		m.confirmArmed = false
		switch {
		case errors.Is(err, skip.ErrNotAvailable):
			cmd := m.showToast(avail.StatusLine(), toastWarn)
			return m, cmd
		case errors.Is(err, skip.ErrNothingPending):
			cmd := m.showToast("Select objects to skip first", toastWarn)
			return m, cmd
		}
		cmd := m.showToast(err.Error(), toastWarn)
		return m, cmd
	}
	if m.prefs.ConfirmApply && !m.confirmArmed {
		m.confirmArmed = true
		return m, nil
	}
	m.confirmArmed = false
	m.applying = true
	return m, dispatchCmd(m.ctx, m.skipper, avail, ids)
}

// handleApplyResult reports a finished dispatch. Failures keep the pending
// selection so the user can retry.
func (m Model) handleApplyResult(msg applyResultMsg) (tea.Model, tea.Cmd) {
	m.applying = false
	m.skipper.ApplyFinished(msg.ids, msg.err)
	m.clampCursor()
	if msg.err != nil {
		cmd := m.showToast("Skip failed: "+msg.err.Error(), toastError)
		return m, cmd
	}
	cmds := []tea.Cmd{m.showToast(fmt.Sprintf("Skip sent for %s", pluralObjects(len(msg.ids))), toastSuccess)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return m, tea.Batch(cmds...)
}

func pluralObjects(n int) string {
	if n == 1 {
		return "1 object"
	}
	return fmt.Sprintf("%d objects", n)
}

// renderSkip renders the skip-objects modal body below the header.
func (m Model) renderSkip() string {
	styles := m.theme.Styles()
	layout := m.skipLayout()

	var b strings.Builder

	title := "Skip objects"
	if sel := m.skipper.Selection(); sel.Plate != nil {
		title += fmt.Sprintf(" · plate %d", sel.PlateIndex)
	}
	b.WriteString(" " + styles.Text.Bold(true).Render(title))
	b.WriteString("\n")

	statusStyle := styles.MutedText
	if !m.skipper.Availability().Available {
		statusStyle = styles.WarningText
	}
	b.WriteString(" " + statusStyle.Render(truncate(m.skipper.StatusLine(), max(m.width-2, 0))))
	b.WriteString("\n\n")

	preview := m.renderPreviewArea(layout)
	list := m.renderObjectList(layout)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Repeat(" ", layout.previewLeft),
		lipgloss.NewStyle().Width(layout.cols).Height(layout.rows).Render(preview),
		strings.Repeat(" ", listGap),
		list,
	)
	b.WriteString(body)
	b.WriteString("\n\n")

	b.WriteString(" " + m.renderApplyBar())
	b.WriteString("\n")
	b.WriteString(" " + m.renderToast())

	return b.String()
}

func (m Model) renderPreviewArea(l skipLayout) string {
	styles := m.theme.Styles()
	placeholder := func(text string, style lipgloss.Style) string {
		return lipgloss.Place(l.cols, l.rows, lipgloss.Center, lipgloss.Center, style.Render(text))
	}
	switch m.skipper.PickStatus() {
	case skip.PickLoading:
		return placeholder("Loading preview...", styles.MutedText)
	case skip.PickReady:
		pm := m.skipper.PickMap()
		cells := previewCells(pm, m.skipper.Overlay(), l.cols, l.rows)
		return strings.Join(renderPreview(cells, m.theme.SurfaceAlt), "\n")
	case skip.PickUnavailable:
		return placeholder("Preview unavailable", styles.WarningText)
	}
	return placeholder("No preview", styles.FaintText)
}

// renderObjectList renders the visible window of object rows.
func (m Model) renderObjectList(l skipLayout) string {
	styles := m.theme.Styles()
	rows := m.skipper.Rows()
	if len(rows) == 0 {
		return styles.FaintText.Render("No objects")
	}

	end := min(l.listOffset+l.listVisible, len(rows))
	lines := make([]string, 0, end-l.listOffset)
	for i := l.listOffset; i < end; i++ {
		row := rows[i]
		marker, markerStyle := stateMarker(row.State, styles)
		text := fmt.Sprintf("%s %s", marker, truncate(row.Name, l.listWidth-4))
		line := markerStyle.Width(l.listWidth).Render(text)
		if i == m.cursor {
			line = styles.Selected.Width(l.listWidth).Render(text)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func stateMarker(s skip.ObjectState, styles Styles) (string, lipgloss.Style) {
	switch s {
	case skip.ObjectSelected:
		return "[x]", styles.InfoText
	case skip.ObjectSkipped:
		return "[-]", styles.FaintText
	}
	return "[ ]", styles.Text
}

// renderApplyBar renders the apply affordance and its confirmation prompt.
func (m Model) renderApplyBar() string {
	styles := m.theme.Styles()
	pending := len(m.skipper.Engine().Pending())

	switch {
	case m.applying:
		return styles.InfoText.Render("Sending skip command...")
	case m.confirmArmed:
		return styles.WarningText.Bold(true).Render(
			fmt.Sprintf("Press a again to skip %s, any other key cancels", pluralObjects(pending)))
	case m.skipper.CanApply():
		return styles.AccentText.Render("a") + styles.Text.Render(fmt.Sprintf(" Apply (%d)", pending))
	}
	return styles.FaintText.Render(fmt.Sprintf("a Apply (%d)", pending))
}
