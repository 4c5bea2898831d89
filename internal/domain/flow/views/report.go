package views

// DeviceReport is the display row for one device.
type DeviceReport struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TxCapacity int    `json:"tx_capacity"`
	RxCapacity int    `json:"rx_capacity"`
	TxUsed     int    `json:"tx_used"`
	RxUsed     int    `json:"rx_used"`
	TxFree     int    `json:"tx_free"` // negative when over capacity
	RxFree     int    `json:"rx_free"` // negative when over capacity
	TxOver     bool   `json:"tx_over"`
	RxOver     bool   `json:"rx_over"`
}

// Report is the usage summary of a whole workspace.
type Report struct {
	Revision     int64          `json:"revision"`
	Devices      []DeviceReport `json:"devices"`
	TotalTx      int            `json:"total_tx"`
	TotalRx      int            `json:"total_rx"`
	OverCapacity int            `json:"over_capacity"` // devices over in either direction
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	r.Devices = append([]DeviceReport(nil), r.Devices...)
	return r
}
