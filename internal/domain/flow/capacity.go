package flow

// IsOverCapacity reports whether used strictly exceeds capacity.
func IsOverCapacity(capacity, used int) bool {
	return used > capacity
}

// Evaluation is the per-direction capacity verdict for one device.
type Evaluation struct {
	DeviceID string `json:"device_id"`
	TxUsed   int    `json:"tx_used"`
	RxUsed   int    `json:"rx_used"`
	TxOver   bool   `json:"tx_over"`
	RxOver   bool   `json:"rx_over"`
}

// Over reports whether either direction is over capacity.
func (e Evaluation) Over() bool { return e.TxOver || e.RxOver }

// Evaluate compares a device's declared capacities against its computed usage.
func Evaluate(d Device, u Usage) Evaluation {
	tx, rx := u.TxUsed[d.ID], u.RxUsed[d.ID]
	return Evaluation{
		DeviceID: d.ID,
		TxUsed:   tx,
		RxUsed:   rx,
		TxOver:   IsOverCapacity(d.TxCapacity, tx),
		RxOver:   IsOverCapacity(d.RxCapacity, rx),
	}
}
