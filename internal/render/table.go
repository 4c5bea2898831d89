// Package render formats usage reports for terminals.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/edirooss/flowplan/internal/domain/flow/views"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	overStyle   = cellStyle.Foreground(lipgloss.Color("#FF0000")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

var headers = []string{"DEVICE", "TX USED", "TX CAP", "TX FREE", "RX USED", "RX CAP", "RX FREE"}

// Column groups whose cells turn red when the direction is over capacity.
const (
	txFirst, txLast = 1, 3
	rxFirst, rxLast = 4, 6
)

// Table renders r as a bordered table followed by a totals line.
func Table(r views.Report) string {
	rows := make([][]string, 0, len(r.Devices))
	for _, d := range r.Devices {
		rows = append(rows, []string{
			label(d),
			strconv.Itoa(d.TxUsed), strconv.Itoa(d.TxCapacity), strconv.Itoa(d.TxFree),
			strconv.Itoa(d.RxUsed), strconv.Itoa(d.RxCapacity), strconv.Itoa(d.RxFree),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			d := r.Devices[row]
			switch {
			case d.TxOver && col >= txFirst && col <= txLast:
				return overStyle
			case d.RxOver && col >= rxFirst && col <= rxLast:
				return overStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(Summary(r))
	return b.String()
}

// Summary is the one-line verdict under the table.
func Summary(r views.Report) string {
	totals := fmt.Sprintf("%d devices, %d tx flows, %d rx flows", len(r.Devices), r.TotalTx, r.TotalRx)
	if r.OverCapacity == 0 {
		return totals + " " + okStyle.Render("all within budget")
	}
	return totals + " " + badStyle.Render(fmt.Sprintf("%d over capacity", r.OverCapacity))
}

func label(d views.DeviceReport) string {
	if d.Name == "" || d.Name == d.ID {
		return d.ID
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.ID)
}
