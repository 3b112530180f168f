// Package report renders evaluation results for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vadiminshakov/rsivolume/internal/app"
)

const (
	colWarmup  = 2
	colEntries = 3
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#C9A227", Dark: "#F2C94C"}

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(0, 2).
			Bold(true).
			MarginBottom(1)

	headStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	signalStyle = cellStyle.Foreground(special).Bold(true)
	warnStyle   = cellStyle.Foreground(warning)
)

var header = []string{"PAIR", "CANDLES", "WARM-UP", "ENTRIES", "LAST SIGNAL"}

// Write renders a summary table of results.
func Write(w io.Writer, strategy string, results []app.Result) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		last := "-"
		if !r.LastEntry.IsZero() {
			last = r.LastEntry.UTC().Format(time.DateTime)
		}
		warmup := strconv.Itoa(r.WarmupRows)
		if r.Insufficient {
			warmup += " (short)"
		}
		rows = append(rows, []string{
			r.Pair.String(),
			strconv.Itoa(r.Candles),
			warmup,
			strconv.Itoa(r.Entries),
			last,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			if row < 0 || row >= len(results) {
				return cellStyle
			}
			res := results[row]
			switch {
			case col == colEntries && res.Entries > 0:
				return signalStyle
			case col == colWarmup && res.Insufficient:
				return warnStyle
			default:
				return cellStyle
			}
		})

	title := titleStyle.Render(fmt.Sprintf("%s: %d pairs", strategy, len(results)))
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, title, t.Render()))
	return err
}
