package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/filebane/internal/battle"
	"github.com/tatianab/filebane/internal/config"
	"github.com/tatianab/filebane/internal/intel"
	"github.com/tatianab/filebane/internal/models"
	"github.com/tatianab/filebane/internal/progress"
	"github.com/tatianab/filebane/internal/scan"
	"github.com/tatianab/filebane/internal/story"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAF5F"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2)

	intelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAFF")).
			Italic(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)
)

type model struct {
	machine *story.Machine
	bridge  *story.Bridge
	engine  *intel.Engine // nil when no API key is configured
	store   *progress.Store
	cfg     *config.Config
	clock   battle.Clock

	orch    *battle.Orchestrator
	events  chan battle.Event
	lastEnd *models.Completion

	spinner   spinner.Model
	viewport  viewport.Model
	battleLog string

	cursor   int
	reports  map[string]*models.IntelReport
	intelErr map[string]string
	fetching map[string]bool

	width  int
	height int
	err    error
}

func newModel(m *story.Machine, b *story.Bridge, eng *intel.Engine, store *progress.Store, cfg *config.Config) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		machine:  m,
		bridge:   b,
		engine:   eng,
		store:    store,
		cfg:      cfg,
		clock:    battle.NewClock(),
		spinner:  sp,
		reports:  make(map[string]*models.IntelReport),
		intelErr: make(map[string]string),
		fetching: make(map[string]bool),
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

type scanDoneMsg struct {
	subjects []models.Subject
	err      error
}

type intelMsg struct {
	id     string
	report *models.IntelReport
	err    error
}

type battleEventMsg struct {
	ev battle.Event
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = 8

	case scanDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.machine.ScanComplete(msg.subjects)
		m.cursor = 0
		return m, nil

	case intelMsg:
		delete(m.fetching, msg.id)
		if msg.err != nil {
			m.intelErr[msg.id] = msg.err.Error()
		} else {
			m.reports[msg.id] = msg.report
		}
		return m, nil

	case battleEventMsg:
		return m.handleBattleEvent(msg.ev)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.teardown()
	}

	// A running battle owns the keyboard.
	if m.orch != nil {
		return m.handleBattleKey(msg)
	}

	switch m.machine.Phase() {
	case story.PhaseIntro:
		switch msg.String() {
		case "q", "esc":
			return m.teardown()
		case "enter":
			m.machine.Start()
			return m, m.scanCmd()
		}

	case story.PhaseOverview:
		encounters := m.machine.Encounters()
		switch msg.String() {
		case "q", "esc":
			return m.teardown()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(encounters)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(encounters) {
				id := encounters[m.cursor].ID
				m.machine.Select(id) // locked selection is a no-op
				if m.machine.Phase() == story.PhaseEntityDetail {
					return m, m.intelCmd(id)
				}
			}
		}

	case story.PhaseEntityDetail:
		switch msg.String() {
		case "b", "esc":
			m.machine.Back()
		case "f", "enter":
			return m.startBattle()
		}

	case story.PhaseOutcome:
		switch msg.String() {
		case "enter", "c":
			m.machine.Continue()
			m.cursor = 0
		case "q", "esc":
			return m.teardown()
		}

	case story.PhaseSummary:
		switch msg.String() {
		case "r":
			m.machine.Replay()
			m.machine.Start()
			m.machine.ScanComplete(m.machine.Encounters())
			m.cursor = 0
			m.lastEnd = nil
		case "q", "esc", "enter":
			return m.teardown()
		}
	}

	return m, nil
}

func (m model) handleBattleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "a":
		m.orch.Submit(battle.ActionStrike)
	case "2", "s":
		// Silently rejected when resource is short; the view greys it out.
		m.orch.Submit(battle.ActionSpecial)
	case "3", "d":
		m.orch.Submit(battle.ActionShield)
	case "4", "r":
		m.orch.Submit(battle.ActionRetreat)
	}
	return m, nil
}

func (m model) handleBattleEvent(ev battle.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case battle.PhaseChanged:
		switch ev.To {
		case battle.PhaseEnemyTurn:
			m.appendLog(subjectStyle.Render(m.orch.Subject().Name) + " stirs...")
		case battle.PhaseWon:
			m.appendLog(bannerStyle.Render("BANISHED!"))
		case battle.PhaseLost:
			m.appendLog(bannerStyle.Render("It survived. You did not."))
		}

	case battle.DamageDealt:
		m.appendLog(damageLine(ev, m.orch.Subject().Name))

	case battle.Completed:
		if err := m.bridge.Resolve(ev); err == nil {
			out := story.OutcomeForResult(ev.Result)
			m.lastEnd = &models.Completion{
				EncounterID: ev.EncounterID,
				Outcome:     out,
				SizeFreed:   ev.SizeFreed,
			}
		}
		m.orch = nil
		m.events = nil
		return m, nil
	}

	return m, m.waitForEvent()
}

func damageLine(ev battle.DamageDealt, subjectName string) string {
	d := ev.Damage
	switch {
	case d.Blocked:
		return "Your shield shatters, absorbing the blow. (0)"
	case d.Target == battle.TargetSubject:
		return fmt.Sprintf("You hit %s for %d! (%d HP left)", subjectName, d.Amount, ev.SubjectHP)
	default:
		return fmt.Sprintf("%s hits you for %d! (%d HP left)", subjectName, d.Amount, ev.PlayerHP)
	}
}

func (m *model) appendLog(line string) {
	m.battleLog += line + "\n"
	m.viewport.SetContent(m.battleLog)
	m.viewport.GotoBottom()
}

func (m model) teardown() (tea.Model, tea.Cmd) {
	if m.orch != nil {
		m.orch.Cancel()
	}
	m.machine.Exit()
	return m, tea.Quit
}

func (m model) startBattle() (tea.Model, tea.Cmd) {
	sub, ok := m.machine.Fight()
	if !ok {
		return m, nil
	}
	events := make(chan battle.Event, 128)
	m.events = events
	m.orch = battle.NewOrchestrator(sub, m.clock, func(ev battle.Event) {
		events <- ev
	})
	m.battleLog = ""
	if m.viewport.Width == 0 {
		w := m.width - 4
		if w < 40 {
			w = 60
		}
		m.viewport = viewport.New(w, 8)
	}
	m.appendLog(fmt.Sprintf("%s blocks your path!", subjectStyle.Render(sub.Name)))
	return m, m.waitForEvent()
}

func (m model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return battleEventMsg{ev: <-events}
	}
}

func (m model) scanCmd() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		if cfg.ScanDir != "" {
			subjects, err := scan.Dir(cfg.ScanDir, cfg.ScanLimit)
			if err == nil && len(subjects) > 0 {
				return scanDoneMsg{subjects: subjects}
			}
		}
		subjects, err := scan.Curated()
		return scanDoneMsg{subjects: subjects, err: err}
	}
}

func (m model) intelCmd(id string) tea.Cmd {
	if m.engine == nil || m.reports[id] != nil || m.fetching[id] {
		return nil
	}
	m.fetching[id] = true
	eng := m.engine
	var sub models.Subject
	for _, s := range m.machine.Encounters() {
		if s.ID == id {
			sub = s
			break
		}
	}
	return func() tea.Msg {
		report, err := eng.Analyze(context.Background(), sub)
		return intelMsg{id: id, report: report, err: err}
	}
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\nPress Ctrl+C to quit.\n", m.err)
	}
	if m.orch != nil {
		return m.viewBattle()
	}

	switch m.machine.Phase() {
	case story.PhaseIntro:
		return m.viewIntro()
	case story.PhaseScanning:
		return fmt.Sprintf("\n  %s Scanning for monsters...\n", m.spinner.View())
	case story.PhaseOverview:
		return m.viewOverview()
	case story.PhaseEntityDetail:
		return m.viewDetail()
	case story.PhaseOutcome:
		return m.viewOutcome()
	case story.PhaseSummary:
		return m.viewSummary()
	}
	return ""
}

func (m model) viewIntro() string {
	return "\n" + titleStyle.Render("FILEBANE") + "\n\n" +
		"Your disk is haunted. Files have become monsters.\n" +
		"Fight them one by one, in order. Banish what you can.\n\n" +
		helpStyle.Render("enter: begin   q: quit") + "\n"
}

func (m model) viewOverview() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("ENCOUNTERS") + "\n\n")
	for i, sub := range m.machine.Encounters() {
		line := fmt.Sprintf("%s  %s  (%s)", sub.Sprite, sub.Name, humanSize(sub.SizeBytes))
		if out, done := m.machine.Result(sub.ID); done {
			line = doneStyle.Render(fmt.Sprintf("✓ %s — %s", line, out))
		} else if !m.machine.Selectable(i) {
			line = lockedStyle.Render("🔒 " + line)
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓: move   enter: inspect   q: quit") + "\n")
	return b.String()
}

func (m model) viewDetail() string {
	id := m.machine.SelectedID()
	var sub models.Subject
	for _, s := range m.machine.Encounters() {
		if s.ID == id {
			sub = s
			break
		}
	}

	var b strings.Builder
	b.WriteString("\n" + subjectStyle.Render(sub.Name) + "\n")
	b.WriteString(fmt.Sprintf("%s · %s · tier: %s\n\n", sub.ID, humanSize(sub.SizeBytes), sub.Tier))
	if sub.Lore != "" {
		b.WriteString(sub.Lore + "\n")
	}

	switch {
	case m.reports[id] != nil:
		r := m.reports[id]
		b.WriteString("\n" + intelStyle.Render("INTEL: "+r.Analysis) + "\n")
		for _, rec := range r.Recommendations {
			b.WriteString(intelStyle.Render("  · "+rec) + "\n")
		}
	case m.intelErr[id] != "":
		b.WriteString("\n" + lockedStyle.Render("intel unavailable: "+m.intelErr[id]) + "\n")
	case m.fetching[id]:
		b.WriteString(fmt.Sprintf("\n%s fetching intel...\n", m.spinner.View()))
	}

	b.WriteString("\n" + helpStyle.Render("f: fight   b: back") + "\n")
	return b.String()
}

func (m model) viewBattle() string {
	st := m.orch.State()
	sub := m.orch.Subject()

	var b strings.Builder
	b.WriteString("\n" + subjectStyle.Render(sub.Name) + "  " + hpBar(st.SubjectHP, st.SubjectHPMax) + "\n")
	b.WriteString(fmt.Sprintf("You  %s   resource %d", hpBar(st.PlayerHP, battle.MaxPlayerHP), st.PlayerResource))
	if st.ShieldActive {
		b.WriteString("   [shielded]")
	}
	if st.Cursed {
		b.WriteString("   " + subjectStyle.Render("[cursed]"))
	}
	b.WriteString("\n\n")
	b.WriteString(logStyle.Render(m.viewport.View()) + "\n\n")

	special := "2: special (30)"
	if st.PlayerResource < battle.SpecialCost {
		special = lockedStyle.Render(special)
	}
	b.WriteString(helpStyle.Render("1: strike   "+special+"   3: shield   4: retreat") + "\n")
	return b.String()
}

func (m model) viewOutcome() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("OUTCOME") + "\n\n")
	if m.lastEnd != nil {
		switch m.lastEnd.Outcome {
		case models.OutcomeBanished:
			b.WriteString(bannerStyle.Render("Banished!") +
				fmt.Sprintf(" You reclaimed %s.\n", humanSize(m.lastEnd.SizeFreed)))
		case models.OutcomeSkipped:
			b.WriteString("You retreated. It will be waiting.\n")
		case models.OutcomeSurvived:
			b.WriteString("It survived. The file remains.\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("enter: continue") + "\n")
	return b.String()
}

func (m model) viewSummary() string {
	s := m.machine.Summary()
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("CAMPAIGN COMPLETE") + "\n\n")
	b.WriteString(fmt.Sprintf("Banished: %d   Skipped: %d   Survived: %d\n", s.Banished, s.Skipped, s.Survived))
	b.WriteString(fmt.Sprintf("Reclaimed this run: %s\n", humanSize(s.BytesFreed)))
	if m.store != nil {
		if t, err := m.store.Totals(); err == nil {
			b.WriteString(fmt.Sprintf("Reclaimed lifetime: %s across %d banishings\n",
				humanSize(t.BytesFreed), t.Banished))
		}
	}
	b.WriteString("\n" + helpStyle.Render("r: replay   q: quit") + "\n")
	return b.String()
}

func hpBar(cur, max int) string {
	const width = 20
	if max <= 0 {
		max = 1
	}
	filled := cur * width / max
	if cur > 0 && filled == 0 {
		filled = 1
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), cur, max)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// Run starts the TUI. eng and store may be nil (no intel, no persistence).
func Run(m *story.Machine, b *story.Bridge, eng *intel.Engine, store *progress.Store, cfg *config.Config) error {
	p := tea.NewProgram(newModel(m, b, eng, store, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
