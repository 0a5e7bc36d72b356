package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwillemsen/baanradar/internal/geo"
	"github.com/jwillemsen/baanradar/internal/model"
)

// Lines per vacancy item in the list view (title + subtitle + blank separator).
const vacancyItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	vacancyTitleStyle = lipgloss.NewStyle().
				Bold(true)

	vacancySubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// Home is the commute reference point. When set, the list and detail views
// show the straight-line distance to each vacancy's location.
type Home struct {
	Lon float64
	Lat float64
}

type browseModel struct {
	vacancies []model.Vacancy
	home      *Home

	listViewport viewport.Model
	cursor       int
	width        int
	height       int
	ready        bool

	view            viewState
	detailViewport  viewport.Model
	showDescription bool
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the viewport.
	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if len(m.vacancies) > 0 {
			openURL(m.vacancies[m.cursor].URL)
		}
		return m, nil
	case "r":
		if len(m.vacancies) > 0 && m.vacancies[m.cursor].About != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.vacancies)-1, 0))
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * vacancyItemHeight
	cursorBottom := cursorTop + vacancyItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.vacancies) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.showDescription = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderVacancies(m.vacancies, m.cursor, m.home))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m browseModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Vacancies (%d)", len(m.vacancies)))
	pane := activeBorderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" ↑/↓ cursor  Enter detail  q quit")
	return header + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Vacancy Details")
	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.vacancies[m.cursor].About != "" {
		statusText = " o open URL  r description  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	v := m.vacancies[m.cursor]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", v.Title)
	addField("Company", v.Company)
	addField("Broker", v.Broker)
	if v.Location != nil {
		addField("Location", v.Location.Name)
		if d, ok := homeDistance(m.home, v.Location); ok {
			addField("Distance", fmt.Sprintf("%.0f km from home", d))
		}
	}

	b.WriteByte('\n')

	if v.Hours != nil {
		addField("Hours", fmt.Sprintf("%d per week", *v.Hours))
	}
	addField("Salary", v.Salary)
	if v.PostedAt != nil {
		addField("Posted", v.PostedAt.Format("02 Jan 2006"))
	}
	if len(v.Skills) > 0 {
		names := make([]string, len(v.Skills))
		for i, skill := range v.Skills {
			names[i] = skill.Name
		}
		addField("Skills", strings.Join(names, ", "))
	}

	b.WriteByte('\n')
	addField("URL", v.URL)

	if v.About != "" {
		wrapWidth := max(m.width-8, 20)
		b.WriteByte('\n')
		if m.showDescription {
			label := "── Description "
			fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
			b.WriteString(descDividerStyle.Render(label+fill) + "\n\n")
			b.WriteString(descBodyStyle.Render(wordWrap(v.About, wrapWidth)) + "\n")
		} else {
			b.WriteString(descHintStyle.Render("  press r to read the description") + "\n")
		}
	}

	return b.String()
}

func renderVacancies(vacancies []model.Vacancy, cursor int, home *Home) string {
	if len(vacancies) == 0 {
		return "  (no vacancies)"
	}

	var b strings.Builder
	for i, v := range vacancies {
		isSelected := i == cursor

		titleSt := vacancyTitleStyle
		subtitleSt := vacancySubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%s · %s", v.Company, v.Title)))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle(v, home)))
		b.WriteByte('\n')

		if i < len(vacancies)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func subtitle(v model.Vacancy, home *Home) string {
	place := "?"
	if v.Location != nil {
		place = v.Location.Name
		if d, ok := homeDistance(home, v.Location); ok {
			place = fmt.Sprintf("%s (%.0f km)", place, d)
		}
	}

	posted := "n/a"
	if v.PostedAt != nil {
		posted = v.PostedAt.Format("2006-01-02")
	}
	return fmt.Sprintf("%s · %s · %s", place, v.Broker, posted)
}

// homeDistance returns the distance from home to the location in km. Locations
// that never geocoded carry the zero coordinate and report no distance.
func homeDistance(home *Home, loc *model.Location) (float64, bool) {
	if home == nil || loc == nil || geo.Unresolved(*loc) {
		return 0, false
	}
	return geo.Distance(model.Location{Lon: home.Lon, Lat: home.Lat}, *loc), true
}

func sortByPostedAt(vacancies []model.Vacancy) {
	sort.Slice(vacancies, func(i, j int) bool {
		if vacancies[i].PostedAt == nil && vacancies[j].PostedAt == nil {
			return vacancies[i].URL < vacancies[j].URL
		}
		if vacancies[i].PostedAt == nil {
			return false
		}
		if vacancies[j].PostedAt == nil {
			return true
		}
		return vacancies[i].PostedAt.After(*vacancies[j].PostedAt)
	})
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive vacancy browser. home may be nil; when set,
// each resolved location shows its distance from home.
func Run(vacancies []model.Vacancy, home *Home) error {
	sortByPostedAt(vacancies)

	m := browseModel{
		vacancies: vacancies,
		home:      home,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
