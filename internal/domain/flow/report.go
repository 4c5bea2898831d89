package flow

import "github.com/edirooss/flowplan/internal/domain/flow/views"

// BuildReport computes usage for the given collections and projects it, together with the
// capacity verdicts, into display rows. Rows follow the order of devs.
func BuildReport(devs []Device, conns []Connection) views.Report {
	u := ComputeUsage(devs, conns)

	r := views.Report{
		Devices: make([]views.DeviceReport, 0, len(devs)),
		TotalTx: u.TotalTx,
		TotalRx: u.TotalRx,
	}
	for _, d := range devs {
		e := Evaluate(d, u)
		r.Devices = append(r.Devices, views.DeviceReport{
			ID:         d.ID,
			Name:       d.Name,
			TxCapacity: d.TxCapacity,
			RxCapacity: d.RxCapacity,
			TxUsed:     e.TxUsed,
			RxUsed:     e.RxUsed,
			TxFree:     d.TxCapacity - e.TxUsed,
			RxFree:     d.RxCapacity - e.RxUsed,
			TxOver:     e.TxOver,
			RxOver:     e.RxOver,
		})
		if e.Over() {
			r.OverCapacity++
		}
	}
	return r
}
