package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

type sessionState int

const (
	stateLoading sessionState = iota
	stateScenario
	stateSummary
	stateActivity
	stateReflection
	stateComplete
	stateError
)

type model struct {
	state     sessionState
	engine    *engine.Engine
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
	progress  models.Progress
	scenario  models.Scenario
	busy      bool
	quitting  bool
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	newsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#D4A017")).
			Padding(0, 1)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6F61")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	barColors = map[models.Stat]lipgloss.Color{
		models.StatIntegrity:  "#228B54",
		models.StatMoney:      "#D4A017",
		models.StatPower:      "#6A5ACD",
		models.StatReputation: "#1E90FF",
	}
)

func NewModel(eng *engine.Engine) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return model{
		state:     stateLoading,
		engine:    eng,
		textInput: ti,
		viewport:  viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.resume())
}

type resumedMsg struct {
	progress models.Progress
	scenario models.Scenario
	briefing engine.Briefing
	result   engine.Result
	err      error
}

type turnMsg struct {
	turn engine.Turn
	err  error
}

type reflectionMsg struct {
	reflection models.Reflection
	err        error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// a turn in flight is saved before the program exits
	switch msg.(type) {
	case resumedMsg, turnMsg, reflectionMsg, errMsg:
		m.busy = false
		if m.quitting {
			return m, tea.Quit
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.busy {
				m.quitting = true
				m.note("Saving, the game will close in a moment.")
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			return m.submit(input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.gameLog)

	case resumedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.enter(msg)
		return m, nil

	case turnMsg:
		if msg.err != nil {
			m.note(msg.err.Error())
			return m, nil
		}
		m.progress = m.engine.Progress()
		m.state = stateSummary
		m.appendTurn(msg.turn)
		m.textInput.Placeholder = "Press Enter to continue"
		return m, nil

	case reflectionMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		if msg.reflection.Feedback != "" {
			m.appendLog(gameStyle.Italic(true).Width(m.logWidth()).Render(msg.reflection.Feedback))
		}
		return m, m.resume()

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state != stateError && m.state != stateLoading {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit handles a line of input for the current screen.
func (m model) submit(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "/quit":
		return m, tea.Quit
	case "/restart":
		m.gameLog = ""
		m.busy = true
		return m, m.restart()
	case "/hint":
		if m.state == stateScenario && m.scenario.Hint != "" {
			m.appendLog(helpStyle.Width(m.logWidth()).Render("Hint: " + m.scenario.Hint))
		}
		return m, nil
	}

	switch m.state {
	case stateScenario:
		id, err := strconv.Atoi(input)
		if err != nil {
			m.note(fmt.Sprintf("Type the number of a choice, not %q.", input))
			return m, nil
		}
		choice, ok := m.scenario.Choice(id)
		if !ok {
			m.note(fmt.Sprintf("There is no choice %d.", id))
			return m, nil
		}
		m.appendLog(userStyle.Width(m.logWidth()).Render("> " + choice.Text))
		m.busy = true
		return m, m.choose(id)

	case stateSummary:
		m.busy = true
		return m, m.step(m.engine.Continue)

	case stateActivity:
		m.busy = true
		return m, m.step(m.engine.CompleteActivity)

	case stateReflection:
		if input == "" {
			return m, nil
		}
		m.appendLog(userStyle.Width(m.logWidth()).Render("> " + input))
		m.busy = true
		return m, m.reflect(input)
	}
	return m, nil
}

// enter shows the screen for the phase the engine is in.
func (m *model) enter(msg resumedMsg) {
	m.progress = msg.progress
	switch msg.progress.Phase {
	case models.PhaseScenario:
		m.state = stateScenario
		m.scenario = msg.scenario
		m.appendLog(m.renderScenario(msg.scenario))
		m.textInput.Placeholder = "Choose 1-" + strconv.Itoa(len(msg.scenario.Choices))
	case models.PhaseSummary:
		m.state = stateSummary
		m.textInput.Placeholder = "Press Enter to continue"
	case models.PhaseActivity:
		m.appendLog(m.renderBriefing(msg.briefing))
		if msg.briefing.Activity == models.ActivityReflection {
			m.state = stateReflection
			m.textInput.Placeholder = "Your answer..."
		} else {
			m.state = stateActivity
			m.textInput.Placeholder = "Press Enter to continue"
		}
	case models.PhaseComplete:
		m.state = stateComplete
		m.appendLog(m.renderResult(msg.result))
		m.textInput.Placeholder = "/restart or /quit"
	}
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateLoading:
		s = "\n  Loading your career... please wait.\n"

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)

	default:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		help := helpStyle.Render("Commands: /hint, /restart, /quit")
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)
	}

	return "\n" + s + "\n"
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

func (m *model) appendLog(s string) {
	if m.gameLog != "" {
		m.gameLog += "\n\n"
	}
	m.gameLog += s
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m *model) note(s string) {
	m.appendLog(helpStyle.Render(s))
}

func (m *model) appendTurn(turn engine.Turn) {
	w := m.logWidth()
	m.appendLog(gameStyle.Width(w).Render(turn.Choice.OutcomeText))
	for _, item := range m.engine.News(turn.Scenario.ID) {
		m.appendLog(newsStyle.Width(max(w-4, 0)).Render(
			titleStyle.Render(item.Title) + "\n" + item.Source + ", " + item.Date + "\n\n" + item.Summary))
	}
	for _, h := range turn.Headlines {
		m.appendLog(newsStyle.Width(max(w-4, 0)).Render(
			titleStyle.Render("BREAKING: "+h.Headline) + "\n" + h.Source + "\n\n" + h.Content + impactLine(h.Impact)))
	}
	for _, e := range turn.Specials {
		m.appendLog(eventStyle.Render(strings.ToUpper(string(e.Type))+": "+e.Title) + "\n" +
			gameStyle.Width(w).Render(e.Description))
	}
	if turn.StyleChanged {
		m.appendLog(helpStyle.Render("Your leadership style is now: " + string(turn.Style)))
	}
	if turn.Scenario.Lesson != "" {
		m.appendLog(helpStyle.Width(w).Render("Lesson: " + turn.Scenario.Lesson))
	}
}

func (m model) renderScenario(s models.Scenario) string {
	w := m.logWidth()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Scenario %d: %s", s.ID, s.Title)))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(fmt.Sprintf("%s, %s, %s", s.Setting.Position, s.Setting.Location, s.Setting.Year)))
	sb.WriteString("\n\n")
	sb.WriteString(gameStyle.Width(w).Render(s.Description))
	sb.WriteString("\n")
	for _, c := range s.Choices {
		sb.WriteString("\n")
		sb.WriteString(gameStyle.Width(w).Render(fmt.Sprintf("%d) %s", c.ID, c.Text)))
	}
	return sb.String()
}

func (m model) renderBriefing(b engine.Briefing) string {
	return titleStyle.Render(b.Title) + "\n\n" + gameStyle.Width(m.logWidth()).Render(strings.Join(b.Lines, "\n"))
}

func (m model) renderResult(r engine.Result) string {
	w := m.logWidth()
	lines := []string{
		titleStyle.Render(r.Rating.Title),
		"",
		gameStyle.Width(w).Render(r.Rating.Description),
		"",
		fmt.Sprintf("Leadership style: %s", r.Style),
		fmt.Sprintf("Corruption risk: %s", r.CorruptionLevel),
	}
	if len(r.Consequences) > 0 {
		lines = append(lines, "", "Consequences of your decisions:")
		for _, c := range r.Consequences {
			lines = append(lines, "  • "+c.Title)
		}
	}
	lines = append(lines, "", helpStyle.Render("Run `game report` to export a PDF of this playthrough."))
	return strings.Join(lines, "\n")
}

func (m model) renderState() string {
	p := m.progress
	total := m.engine.ScenarioCount()
	scenario := min(p.ScenarioIndex+1, total)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("CAREER"))
	sb.WriteString(fmt.Sprintf("\nScenario %d of %d\n\n", scenario, total))

	sb.WriteString(titleStyle.Render("STATS"))
	sb.WriteString("\n")
	for _, stat := range models.AllStats {
		sb.WriteString(statLine(stat, p.Stats.Get(stat)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(titleStyle.Render("PROFILE"))
	sb.WriteString("\n" + styleLabel(p) + "\n")
	sb.WriteString("Risk: " + profile.CorruptionLevel(p.Stats.Integrity) + "\n")

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(sb.String())
}

// styleLabel names the player's style, which is undetermined until the first decision.
func styleLabel(p models.Progress) string {
	if p.Style == "" {
		return string(profile.Undetermined)
	}
	return p.Style
}

const barLength = 10

func statLine(stat models.Stat, value int) string {
	filled := max(0, min(barLength, value*barLength/100))
	bar := lipgloss.NewStyle().Foreground(barColors[stat]).Render(strings.Repeat("█", filled)) +
		strings.Repeat("░", barLength-filled)
	label := strings.ToUpper(string(stat[:1])) + string(stat[1:])
	return fmt.Sprintf("%-10s %s %3d", label, bar, value)
}

func impactLine(impact models.Effects) string {
	var parts []string
	for _, stat := range models.AllStats {
		if v, ok := impact[stat]; ok && v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", stat, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(parts, ", ")
}

func (m model) resume() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := resumedMsg{progress: m.engine.Progress()}
		switch msg.progress.Phase {
		case models.PhaseScenario:
			msg.scenario, msg.err = m.engine.Scenario(ctx)
		case models.PhaseActivity:
			msg.briefing, msg.err = m.engine.Briefing(ctx)
		case models.PhaseComplete:
			msg.result = m.engine.Result(ctx)
		}
		return msg
	}
}

func (m model) choose(choiceID int) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.engine.Choose(context.Background(), choiceID)
		return turnMsg{turn, err}
	}
}

func (m model) step(fn func(context.Context) (models.Progress, error)) tea.Cmd {
	return func() tea.Msg {
		if _, err := fn(context.Background()); err != nil {
			return errMsg{err}
		}
		return m.resume()()
	}
}

func (m model) reflect(answer string) tea.Cmd {
	return func() tea.Msg {
		reflection, err := m.engine.SubmitReflection(context.Background(), answer)
		return reflectionMsg{reflection, err}
	}
}

func (m model) restart() tea.Cmd {
	return func() tea.Msg {
		if err := m.engine.Restart(context.Background()); err != nil {
			return errMsg{err}
		}
		return m.resume()()
	}
}

func Run(eng *engine.Engine) error {
	p := tea.NewProgram(NewModel(eng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
