package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/ghpm/internal/service/lifecycle"
)

const columnGap = "  "

// Summary counts outcomes per terminal state.
type Summary struct {
	Converged int
	UpToDate  int
	Skipped   int
	Failed    int
}

// Summarize counts outcomes.
func Summarize(outcomes []lifecycle.Outcome) Summary {
	var summary Summary

	for i := range outcomes {
		switch {
		case outcomes[i].Stage == lifecycle.StageDone && outcomes[i].UpToDate:
			summary.UpToDate++
		case outcomes[i].Stage == lifecycle.StageDone:
			summary.Converged++
		case outcomes[i].Stage == lifecycle.StageSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	return summary
}

// String renders "1 converged, 2 up to date, 0 skipped, 1 failed".
func (s Summary) String() string {
	return fmt.Sprintf("%d converged, %d up to date, %d skipped, %d failed",
		s.Converged, s.UpToDate, s.Skipped, s.Failed)
}

// Render writes one row per outcome followed by the summary line.
// Colors are only emitted when w is a terminal.
func Render(w io.Writer, outcomes []lifecycle.Outcome) error {
	renderer := lipgloss.NewRenderer(w)
	header := renderer.NewStyle().Bold(true)
	faint := renderer.NewStyle().Faint(true)
	results := map[string]lipgloss.Style{
		"up to date": renderer.NewStyle().Foreground(lipgloss.Color("2")),
		"done":       renderer.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		"skipped":    renderer.NewStyle().Foreground(lipgloss.Color("3")),
		"failed":     renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}

	rows := [][]string{{"PROGRAM", "OPERATION", "RESULT", "DETAIL"}}
	for i := range outcomes {
		rows = append(rows, []string{
			outcomes[i].Program,
			string(outcomes[i].Operation),
			result(&outcomes[i]),
			detail(&outcomes[i]),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for column, cell := range row {
			widths[column] = max(widths[column], lipgloss.Width(cell))
		}
	}

	var builder strings.Builder

	for index, row := range rows {
		cells := make([]string, len(row))

		for column, cell := range row {
			padded := cell
			if column < len(row)-1 {
				padded += strings.Repeat(" ", widths[column]-lipgloss.Width(cell))
			}

			switch {
			case index == 0:
				cells[column] = header.Render(padded)
			case column == 2:
				cells[column] = results[cell].Render(padded)
			default:
				cells[column] = padded
			}
		}

		builder.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
		builder.WriteByte('\n')
	}

	builder.WriteString(faint.Render(Summarize(outcomes).String()))
	builder.WriteByte('\n')

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

func result(outcome *lifecycle.Outcome) string {
	if outcome.Stage == lifecycle.StageDone && outcome.UpToDate {
		return "up to date"
	}

	return string(outcome.Stage)
}

func detail(outcome *lifecycle.Outcome) string {
	var parts []string

	switch {
	case outcome.Err != nil:
		parts = append(parts, outcome.Message+": "+outcome.Err.Error())
	case outcome.UpToDate:
		parts = append(parts, outcome.Latest)
	case outcome.Latest != "" && outcome.Installed != "":
		parts = append(parts, outcome.Installed+" -> "+outcome.Latest)
	case outcome.Latest != "":
		parts = append(parts, outcome.Latest)
	default:
		parts = append(parts, outcome.Message)
	}

	if outcome.FallbackUsed {
		parts = append(parts, "(fallback)")
	}

	return strings.Join(parts, " ")
}
