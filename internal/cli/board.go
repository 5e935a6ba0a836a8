package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/namastexlabs/genie/pkg/models"
	"github.com/spf13/cobra"
)

// boardWish is the display snapshot of one wish on the board.
type boardWish struct {
	id        string
	status    string
	cardsDone int
	cardsAll  int
}

type boardModel struct {
	activeCol int
	width     int
	height    int

	columns map[models.Stage][]boardWish

	loading bool
	err     error
}

// boardLoadedMsg carries loaded data back to the model.
type boardLoadedMsg struct {
	columns map[models.Stage][]boardWish
	err     error
}

var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activeColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	stageBacklogStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stageInProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	stageReviewStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	stageCompletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel() boardModel {
	return boardModel{
		loading: true,
		columns: make(map[models.Stage][]boardWish),
	}
}

func (m boardModel) Init() tea.Cmd {
	return loadBoard
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.activeCol = (m.activeCol + 1) % len(models.Stages)
			return m, nil
		case "shift+tab", "left", "h":
			m.activeCol = (m.activeCol - 1 + len(models.Stages)) % len(models.Stages)
			return m, nil
		case "r":
			m.loading = true
			return m, loadBoard
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.columns = msg.columns
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := boardTitleStyle.Render(" Genie Board ")
	help := boardHelpStyle.Render("tab/arrows: switch column | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading wishes...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	colWidth := (m.width-2)/len(models.Stages) - 4
	if colWidth < 16 {
		colWidth = 16
	}

	rendered := make([]string, 0, len(models.Stages))
	for i, stage := range models.Stages {
		style := columnStyle
		if i == m.activeCol {
			style = activeColumnStyle
		}
		rendered = append(rendered, style.Width(colWidth).Render(m.renderColumn(stage)))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m boardModel) renderColumn(stage models.Stage) string {
	var b strings.Builder
	wishes := m.columns[stage]
	header := fmt.Sprintf("%s (%d)", stage, len(wishes))
	b.WriteString(columnHeaderStyle.Render(header))
	b.WriteString("\n")

	if len(wishes) == 0 {
		b.WriteString("  -")
		return b.String()
	}

	style := styleForStage(stage)
	for _, w := range wishes {
		line := w.id
		if w.cardsAll > 0 {
			line = fmt.Sprintf("%s  %d/%d", w.id, w.cardsDone, w.cardsAll)
		}
		b.WriteString(style.Render(line))
		if w.status != "" {
			b.WriteString(boardHelpStyle.Render("  " + w.status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func styleForStage(stage models.Stage) lipgloss.Style {
	switch stage {
	case models.StageBacklog:
		return stageBacklogStyle
	case models.StageInProgress:
		return stageInProgressStyle
	case models.StageReview:
		return stageReviewStyle
	case models.StageCompleted:
		return stageCompletedStyle
	}
	return lipgloss.NewStyle()
}

func loadBoard() tea.Msg {
	result := boardLoadedMsg{columns: make(map[models.Stage][]boardWish)}

	if Store == nil {
		result.err = fmt.Errorf("wish store not initialized")
		return result
	}

	for _, stage := range models.Stages {
		wishes, err := Store.ListByStage(stage)
		if err != nil {
			result.err = fmt.Errorf("loading %s wishes: %w", stage, err)
			return result
		}
		for _, w := range wishes {
			bw := boardWish{id: w.ID, status: w.Status}
			if Cards != nil {
				if cards, err := Cards.List(w.ID); err == nil {
					bw.cardsAll = len(cards)
					for _, c := range cards {
						if c.Status == models.CardDone {
							bw.cardsDone++
						}
					}
				}
			}
			result.columns[stage] = append(result.columns[stage], bw)
		}
	}

	return result
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive kanban view of wishes by stage",
	Long: `Launch an interactive terminal board showing wishes in their lifecycle
columns with task card progress.

Navigate between columns with Tab or arrow keys, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}
		p := tea.NewProgram(newBoardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
