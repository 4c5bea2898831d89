package render

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/edirooss/flowplan/internal/domain/flow/views"
)

func init() { lipgloss.SetColorProfile(termenv.Ascii) }

func TestTable(t *testing.T) {
	r := views.Report{
		Devices: []views.DeviceReport{
			{ID: "a", Name: "Console", TxCapacity: 4, TxUsed: 4, RxCapacity: 4},
			{ID: "b", RxCapacity: 1, RxUsed: 2, RxFree: -1, RxOver: true},
		},
		TotalTx:      4,
		TotalRx:      2,
		OverCapacity: 1,
	}

	out := Table(r)
	assert.Contains(t, out, "Console (a)")
	assert.Contains(t, out, "TX FREE")
	assert.Contains(t, out, "-1")
	assert.Contains(t, out, "2 devices, 4 tx flows, 2 rx flows 1 over capacity")
}

func TestSummary_WithinBudget(t *testing.T) {
	assert.Equal(t, "0 devices, 0 tx flows, 0 rx flows all within budget", Summary(views.Report{}))
}
