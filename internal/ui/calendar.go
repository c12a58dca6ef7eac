package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/refresh"
	"github.com/chris-regnier/contentcal/internal/source"
)

const toastTTL = 4 * time.Second

// TUIConfig holds configuration needed by the TUI.
type TUIConfig struct {
	Location  *time.Location
	WeekStart time.Weekday
	MonthCap  int
	MaxWidth  int               // maximum viewport width (0 = no limit)
	Refresh   *refresh.Schedule // background reload cadence (nil = manual only)
	Theme     Theme
	Now       func() time.Time
}

type itemsLoadedMsg struct {
	seq        int
	start, end time.Time
	items      []item.Item
	err        error
}

type rescheduleResultMsg struct {
	intent calendar.Reschedule
	item   item.Item
	err    error
}

type refreshTickMsg struct{}

type toastExpiredMsg struct {
	id int
}

type toast struct {
	id     int
	text   string
	danger bool
}

// panelItem implements list.Item for one item of the detail panel.
type panelItem struct {
	desc  calendar.Descriptor
	it    item.Item
	clock string
}

func (p panelItem) Title() string {
	return fmt.Sprintf("%s  [%s]", p.desc.Label, p.desc.Pill.Label)
}

func (p panelItem) Description() string {
	parts := []string{p.clock, string(p.it.Kind)}
	if len(p.desc.Platforms) > 0 {
		parts = append(parts, strings.Join(p.desc.Platforms, ", "))
	}
	return strings.Join(parts, " · ")
}

func (p panelItem) FilterValue() string { return p.desc.Label }

// calendarModel is the Bubble Tea model for the scheduling calendar.
type calendarModel struct {
	src   source.Source
	cfg   TUIConfig
	board *calendar.Board
	gran  calendar.Granularity
	focus time.Time // focused day, local midnight
	// cursor indexes the focused day's items in display order
	cursor int
	// Loading
	loadSeq     int
	loading     bool
	windowStart time.Time
	windowEnd   time.Time
	// Detail panel
	panelList list.Model
	bodyOpen  bool
	body      viewport.Model
	md        *markdownRenderer
	// Chrome
	toast      toast
	helpActive bool
	width      int
	height     int
	ready      bool
}

func newCalendarModel(src source.Source, cfg TUIConfig) calendarModel {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MonthCap <= 0 {
		cfg.MonthCap = calendar.MonthCap
	}
	return calendarModel{
		src:     src,
		cfg:     cfg,
		board:   calendar.NewBoard(cfg.Location),
		gran:    calendar.Month,
		focus:   calendar.NormalizeDate(cfg.Now(), cfg.Location),
		loadSeq: 1,
		loading: true,
		md:      &markdownRenderer{},
	}
}

func (m calendarModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

// loadWindow is the date range fetched around the focused day: the visible
// month plus one month either side.
func (m calendarModel) loadWindow() (time.Time, time.Time) {
	start, end := calendar.Range(m.focus, calendar.Month, m.cfg.Location, m.cfg.WeekStart)
	return start.AddDate(0, -1, 0), end.AddDate(0, 1, 0)
}

func (m calendarModel) loadCmd() tea.Cmd {
	seq, src := m.loadSeq, m.src
	start, end := m.loadWindow()
	return func() tea.Msg {
		items, err := src.List(context.Background(), source.ListOptions{Start: &start, End: &end})
		return itemsLoadedMsg{seq: seq, start: start, end: end, items: items, err: err}
	}
}

func (m *calendarModel) reload() tea.Cmd {
	m.loadSeq++
	m.loading = true
	return m.loadCmd()
}

// maybeReload fetches a new window once the visible period leaves the
// loaded one. Nothing is fetched while an item is being carried.
func (m *calendarModel) maybeReload() tea.Cmd {
	if m.board.DragState() == calendar.DragDragging {
		return nil
	}
	start, end := calendar.Range(m.focus, m.gran, m.cfg.Location, m.cfg.WeekStart)
	if !m.windowStart.IsZero() && !start.Before(m.windowStart) && !end.After(m.windowEnd) {
		return nil
	}
	if m.loading {
		return nil
	}
	return m.reload()
}

func (m calendarModel) tickCmd() tea.Cmd {
	if m.cfg.Refresh == nil {
		return nil
	}
	return tea.Tick(m.cfg.Refresh.Delay(m.cfg.Now()), func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m calendarModel) rescheduleCmd(intent calendar.Reschedule) tea.Cmd {
	src := m.src
	return func() tea.Msg {
		it, err := src.Reschedule(context.Background(), intent.Ref, intent.NewDate)
		return rescheduleResultMsg{intent: intent, item: it, err: err}
	}
}

func (m *calendarModel) notify(text string, danger bool) tea.Cmd {
	id := m.toast.id + 1
	m.toast = toast{id: id, text: text, danger: danger}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m calendarModel) focusKey() calendar.DayKey {
	return calendar.KeyOf(m.focus, m.cfg.Location)
}

// dayItems returns the focused day's items in the order they are drawn.
func (m calendarModel) dayItems() []item.Item {
	ix := m.board.Index()
	items := ix.Day(m.focusKey())
	if m.gran == calendar.Day {
		slices.SortStableFunc(items, func(a, b item.Item) int {
			ta, _ := ix.Anchor(a.Ref())
			tb, _ := ix.Anchor(b.Ref())
			return ta.Compare(tb)
		})
	}
	return items
}

func (m calendarModel) focusedItem() (item.Item, bool) {
	items := m.dayItems()
	if len(items) == 0 {
		return item.Item{}, false
	}
	return items[min(m.cursor, len(items)-1)], true
}

func (m *calendarModel) setFocus(t time.Time) tea.Cmd {
	m.focus = calendar.NormalizeDate(t, m.cfg.Location)
	if m.board.DragState() != calendar.DragDragging {
		m.cursor = 0
	}
	return m.maybeReload()
}

func (m calendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutPanel()
		return m, nil

	case itemsLoadedMsg:
		if msg.seq != m.loadSeq || m.board.Closed() {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.board.LoadFailed(msg.err)
			if m.board.State() == calendar.Loaded {
				cmd := m.notify("Refresh failed, showing earlier data: "+msg.err.Error(), true)
				return m, cmd
			}
			return m, nil
		}
		m.windowStart, m.windowEnd = msg.start, msg.end
		var cmd tea.Cmd
		if err := m.board.Load(msg.items); err != nil {
			var ie *calendar.IntegrityError
			if errors.As(err, &ie) {
				cmd = m.notify(fmt.Sprintf("%d items have unusable dates", len(ie.Items)), true)
			}
		}
		m.refreshPanel()
		cmd = tea.Batch(cmd, m.maybeReload())
		return m, cmd

	case rescheduleResultMsg:
		if m.board.Closed() {
			return m, nil
		}
		if err := m.board.Resolve(msg.intent, msg.err); err != nil {
			label := msg.intent.Ref.String()
			if it, ok := m.board.Index().Find(msg.intent.Ref); ok {
				label = calendar.Present(it).Label
			}
			m.refreshPanel()
			cmd := tea.Batch(m.notify(fmt.Sprintf("Could not move %s: %v", label, errors.Unwrap(err)), true), m.maybeReload())
			return m, cmd
		}
		m.refreshPanel()
		text := fmt.Sprintf("Moved %s to %s", calendar.Present(msg.item).Label, msg.intent.To)
		cmd := tea.Batch(m.notify(text, false), m.maybeReload())
		return m, cmd

	case refreshTickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.loading && m.board.DragState() != calendar.DragDragging {
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{id: m.toast.id}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		// Help overlay swallows all other keys
		if m.helpActive {
			switch msg.String() {
			case "?", "esc", "q":
				m.helpActive = false
			}
			return m, nil
		}

		if m.bodyOpen {
			return m.updateBody(msg)
		}
		if _, open := m.board.PanelDay(); open {
			return m.updatePanel(msg)
		}
		if m.board.DragState() == calendar.DragDragging {
			return m.updateDragging(msg)
		}
		return m.updateGrid(msg)
	}

	return m, nil
}

func (m calendarModel) quit() (tea.Model, tea.Cmd) {
	m.board.Close()
	return m, tea.Quit
}

// moveFocus handles the arrow keys shared by browsing and dragging.
func (m calendarModel) moveFocus(key string) (calendarModel, tea.Cmd, bool) {
	step := 7
	if m.gran == calendar.Day {
		step = 1
	}
	switch key {
	case "left", "h":
		cmd := m.setFocus(m.focus.AddDate(0, 0, -1))
		return m, cmd, true
	case "right", "l":
		cmd := m.setFocus(m.focus.AddDate(0, 0, 1))
		return m, cmd, true
	case "up", "k":
		cmd := m.setFocus(m.focus.AddDate(0, 0, -step))
		return m, cmd, true
	case "down", "j":
		cmd := m.setFocus(m.focus.AddDate(0, 0, step))
		return m, cmd, true
	case "n", "pgdown":
		cmd := m.setFocus(calendar.Shift(m.focus, m.gran, 1))
		return m, cmd, true
	case "p", "pgup":
		cmd := m.setFocus(calendar.Shift(m.focus, m.gran, -1))
		return m, cmd, true
	case "t":
		cmd := m.setFocus(m.cfg.Now())
		return m, cmd, true
	}
	return m, nil, false
}

func (m calendarModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.moveFocus(msg.String()); ok {
		return next, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.helpActive = true
	case "r":
		cmd := m.reload()
		return m, cmd
	case "m":
		m.gran = calendar.Month
		cmd := m.maybeReload()
		return m, cmd
	case "w":
		m.gran = calendar.Week
		cmd := m.maybeReload()
		return m, cmd
	case "d":
		m.gran = calendar.Day
		cmd := m.maybeReload()
		return m, cmd
	case "e":
		m.board.ToggleExpansion(m.focusKey())
	case "tab":
		if n := len(m.dayItems()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "shift+tab":
		if n := len(m.dayItems()); n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}
	case " ":
		return m.pickUp()
	case "enter":
		key := m.focusKey()
		if _, ok := m.board.SelectDay(key); !ok {
			cmd := m.notify("Nothing scheduled on "+key.String(), false)
			return m, cmd
		}
		m.refreshPanel()
	}
	return m, nil
}

func (m calendarModel) pickUp() (tea.Model, tea.Cmd) {
	it, ok := m.focusedItem()
	if !ok {
		cmd := m.notify("Nothing to move on "+m.focusKey().String(), false)
		return m, cmd
	}
	started, err := m.board.StartDrag(it.Ref())
	if errors.Is(err, calendar.ErrDragInProgress) {
		cmd := m.notify("Still saving the previous move", true)
		return m, cmd
	}
	if err != nil {
		cmd := m.notify(err.Error(), true)
		return m, cmd
	}
	if !started {
		d := calendar.Present(it)
		cmd := m.notify(fmt.Sprintf("%s is %s and can no longer be moved", d.Label, strings.ToLower(d.Pill.Label)), false)
		return m, cmd
	}
	return m, nil
}

func (m calendarModel) updateDragging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.moveFocus(msg.String()); ok {
		return next, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.board.CancelDrag()
		cmd := tea.Batch(m.notify("Move cancelled", false), m.maybeReload())
		return m, cmd
	case " ", "enter":
		intent, ok := m.board.Drop(m.focusKey())
		if !ok {
			cmd := tea.Batch(m.notify("Move cancelled", false), m.maybeReload())
			return m, cmd
		}
		// Keep the cursor on the moved item at its new position.
		for i, it := range m.dayItems() {
			if it.Ref() == intent.Ref {
				m.cursor = i
			}
		}
		return m, m.rescheduleCmd(intent)
	}
	return m, nil
}

func (m calendarModel) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.board.ClosePanel()
		return m, nil
	case "q":
		return m.quit()
	case "enter":
		if sel, ok := m.panelList.SelectedItem().(panelItem); ok {
			m.openBody(sel.it)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.panelList, cmd = m.panelList.Update(msg)
	return m, cmd
}

func (m calendarModel) updateBody(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.bodyOpen = false
		return m, nil
	case "q":
		return m.quit()
	}
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

// refreshPanel rebuilds the detail list from the open day's current bucket.
func (m *calendarModel) refreshPanel() {
	key, open := m.board.PanelDay()
	if !open {
		return
	}
	ix := m.board.Index()
	items := m.board.PanelItems()
	entries := make([]list.Item, len(items))
	for i, it := range items {
		clock := "--:--"
		if at, ok := ix.Anchor(it.Ref()); ok {
			clock = at.In(m.cfg.Location).Format("15:04")
		}
		entries[i] = panelItem{desc: calendar.Present(it), it: it, clock: clock}
	}

	selected := m.panelList.Index()
	m.panelList = m.cfg.Theme.NewList(entries, 0, 0)
	m.panelList.SetShowHelp(false)
	m.panelList.SetFilteringEnabled(false)
	m.panelList.DisableQuitKeybindings()
	if day, err := key.Date(m.cfg.Location); err == nil {
		noun := "items"
		if len(items) == 1 {
			noun = "item"
		}
		m.panelList.Title = fmt.Sprintf("%s · %d %s", day.Format("Monday, January 2"), len(items), noun)
	}
	if selected < len(entries) {
		m.panelList.Select(selected)
	}
	m.layoutPanel()
}

func (m *calendarModel) openBody(it item.Item) {
	cw := m.contentWidth()
	var b strings.Builder
	d := calendar.Present(it)
	fmt.Fprintf(&b, "%s  [%s]\n", d.Label, d.Pill.Label)
	fmt.Fprintf(&b, "%s · %s\n\n", it.Ref(), d.Href)
	if it.Body == "" {
		b.WriteString("(no content)")
	} else {
		b.WriteString(m.md.Render(it.Body, cw, m.cfg.Theme.MarkdownStyle))
	}

	m.body = viewport.New(cw, max(m.height-3, 1))
	m.body.SetContent(b.String())
	m.bodyOpen = true
}

func (m *calendarModel) layoutPanel() {
	if !m.ready {
		return
	}
	if _, open := m.board.PanelDay(); open {
		m.panelList.SetSize(m.contentWidth(), max(m.height/2-2, 4))
	}
	if m.bodyOpen {
		m.body.Width = m.contentWidth()
		m.body.Height = max(m.height-3, 1)
	}
}

// contentWidth returns the effective content width, respecting MaxWidth configuration.
func (m calendarModel) contentWidth() int {
	if m.cfg.MaxWidth > 0 && m.width > m.cfg.MaxWidth {
		return m.cfg.MaxWidth
	}
	return m.width
}

func (m calendarModel) View() string {
	if !m.ready {
		// No PaintScreen here: dimensions are unknown until the first WindowSizeMsg.
		return "Loading..."
	}
	th := m.cfg.Theme
	if m.helpActive {
		placed := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.helpOverlay(),
			lipgloss.WithWhitespaceBackground(th.Background))
		return th.ClearLineEnds(placed)
	}

	cw := m.contentWidth()
	if m.bodyOpen {
		footer := th.HelpStyle().Width(cw).Render("↑/↓ scroll • esc back • q quit")
		content := th.ViewPaneStyle().Width(cw).Render(m.body.View()) + "\n" + footer
		return th.PaintScreen(content, m.width, m.height, cw)
	}

	v := m.board.Render(m.focus, m.gran, calendar.RenderOptions{
		Today:     calendar.KeyOf(m.cfg.Now(), m.cfg.Location),
		WeekStart: m.cfg.WeekStart,
		MonthCap:  m.cfg.MonthCap,
	})

	var sections []string
	status := v.View
	if m.loading {
		status = "loading…"
	}
	title := th.HeaderStyle().Render(v.Title)
	right := th.HelpStyle().Render(status)
	spacer := th.ViewPaneStyle().Render(strings.Repeat(" ", max(cw-lipgloss.Width(title)-lipgloss.Width(right), 1)))
	sections = append(sections, title+spacer+right, "")

	switch m.board.State() {
	case calendar.LoadFailed:
		msg := fmt.Sprintf("Could not load the calendar.\n\n%v\n\nPress r to retry.", m.board.LoadErr())
		sections = append(sections, th.DangerStyle().Width(cw).Render(msg))
	case calendar.LoadPending:
		sections = append(sections, th.HelpStyle().Width(cw).Render("Loading calendar…"))
	default:
		marks := gridMarks{focus: m.focusKey(), dragging: m.board.DragState() == calendar.DragDragging}
		if it, ok := m.focusedItem(); ok {
			marks.item = it.Ref()
		}
		sections = append(sections, renderGrid(v, cw, th.gridStyles(), marks))
		if inv := renderInvalid(v, cw, th.DangerStyle()); inv != "" {
			sections = append(sections, "", inv)
		}
	}

	if _, open := m.board.PanelDay(); open {
		sections = append(sections, "", m.panelList.View())
	}

	sections = append(sections, "", m.statusLine(cw))
	if m.toast.text != "" {
		style := th.SuccessStyle()
		if m.toast.danger {
			style = th.DangerStyle()
		}
		sections = append(sections, style.Width(cw).Render(truncate(m.toast.text, cw)))
	}
	sections = append(sections, th.HelpStyle().Width(cw).Render(m.footerHint()))

	return th.PaintScreen(strings.Join(sections, "\n"), m.width, m.height, cw)
}

func (m calendarModel) statusLine(cw int) string {
	th := m.cfg.Theme
	if sess, ok := m.board.DragSession(); ok && m.board.DragState() == calendar.DragDragging {
		d := calendar.Present(sess.Item)
		text := fmt.Sprintf("Moving %s from %s to %s", d.Label, sess.Origin, m.focusKey())
		return th.AccentStyle().Width(cw).Render(truncate(text, cw))
	}
	if intent, ok := m.board.Pending(); ok {
		return th.HelpStyle().Width(cw).Render(truncate(fmt.Sprintf("Saving move of %s to %s…", intent.Ref, intent.To), cw))
	}
	it, ok := m.focusedItem()
	if !ok {
		return th.HelpStyle().Width(cw).Render(m.focusKey().String())
	}
	d := calendar.Present(it)
	clock := "--:--"
	if at, ok := m.board.Index().Anchor(it.Ref()); ok {
		clock = at.In(m.cfg.Location).Format("15:04")
	}
	text := fmt.Sprintf("%s %s  %s  [%s]  %s", m.focusKey(), clock, d.Label, d.Pill.Label, d.Href)
	return th.PillStyle(d.Pill).Width(cw).Render(truncate(text, cw))
}

func (m calendarModel) footerHint() string {
	if m.board.DragState() == calendar.DragDragging {
		return "←/→/↑/↓ choose day • space drop • esc cancel"
	}
	if _, open := m.board.PanelDay(); open {
		return "↑/↓ select • enter open • esc close"
	}
	return "←/→/↑/↓ day • tab item • space move • enter details • m/w/d view • ? help"
}

func (m calendarModel) helpOverlay() string {
	help := m.cfg.Theme.BorderStyle().
		Padding(1, 2).
		Width(52).
		Render(strings.Join([]string{
			"Calendar",
			"",
			"  ←/→ ↑/↓   move between days",
			"  n / p     next / previous period",
			"  t         jump to today",
			"  m w d     month, week or day view",
			"  e         show all items of the day",
			"  tab       cycle items of the day",
			"  space     pick up item, then drop it",
			"  esc       cancel a move",
			"  enter     open the day's details",
			"  r         reload",
			"  q         quit",
		}, "\n"))
	return help
}

// RunTUI launches the interactive calendar.
func RunTUI(src source.Source, cfg TUIConfig) error {
	p := tea.NewProgram(newCalendarModel(src, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
