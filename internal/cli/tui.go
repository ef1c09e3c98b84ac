package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lrvideckis/keygen/pkg/search"
)

var (
	tuiDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tuiBestStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// SearchModel - Live annealing progress
// =============================================================================

// chainState is the last reported state of one annealing chain.
type chainState struct {
	Iteration int
	Current   float64
	Best      float64
	Seen      bool
}

// SearchModel is the bubbletea model showing per-chain annealing progress.
type SearchModel struct {
	Chains []chainState
	Done   bool
}

// NewSearchModel creates a progress model for the given number of chains.
func NewSearchModel(restarts int) SearchModel {
	return SearchModel{Chains: make([]chainState, restarts)}
}

// searchMsg carries one progress update from a chain.
type searchMsg search.Update

// searchDoneMsg tells the model the search has finished.
type searchDoneMsg struct{}

func (m SearchModel) Init() tea.Cmd {
	return nil
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case searchMsg:
		if msg.Restart >= 0 && msg.Restart < len(m.Chains) {
			m.Chains[msg.Restart] = chainState{
				Iteration: msg.Iteration,
				Current:   msg.Current,
				Best:      msg.Best,
				Seen:      true,
			}
		}
	case searchDoneMsg:
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Annealing"))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	best := -1
	for i, c := range m.Chains {
		if !c.Seen {
			continue
		}
		if best < 0 || c.Best < m.Chains[best].Best {
			best = i
		}
	}

	rows := [][]string{}
	for i, c := range m.Chains {
		if !c.Seen {
			rows = append(rows, []string{fmt.Sprintf("%d", i), "—", "—", "—"})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", c.Iteration),
			fmt.Sprintf("%.6f", c.Current),
			fmt.Sprintf("%.6f", c.Best),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Chain", "Iteration", "Current", "Best").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == best && col == 3 {
				return tuiBestStyle
			}
			if col == 2 {
				return tuiDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Wiring
// =============================================================================

// startSearchUI runs the progress model in the background and returns a
// progress callback safe to call from the search goroutines, plus a stop
// function that tears the UI down and waits for the terminal to be restored.
func startSearchUI(ctx context.Context, restarts int) (func(search.Update), func()) {
	p := tea.NewProgram(NewSearchModel(restarts), tea.WithContext(ctx))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Run()
	}()

	progress := func(u search.Update) {
		p.Send(searchMsg(u))
	}
	stop := func() {
		p.Send(searchDoneMsg{})
		wg.Wait()
	}
	return progress, stop
}
