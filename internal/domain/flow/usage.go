package flow

// Usage is the per-device flow consumption derived from a set of connections.
type Usage struct {
	TxUsed  map[string]int `json:"tx_used"`
	RxUsed  map[string]int `json:"rx_used"`
	TotalTx int            `json:"total_tx"`
	TotalRx int            `json:"total_rx"`
}

// CeilDiv returns the integer ceiling of a/b for b > 0.
// a is floored to 1 first, so CeilDiv(0, b) == 1.
func CeilDiv(a, b int) int {
	if a < 1 {
		a = 1
	}
	return (a-1)/b + 1
}

// UnicastFlows returns the number of flows one unicast receiver needs for the given
// channel count. Non-positive channel counts are treated as 1.
func UnicastFlows(channels int) int {
	if channels < 1 {
		channels = 1
	}
	return CeilDiv(channels, FlowsPerBundle)
}

// ComputeUsage maps devices and connections to transmit/receive flows used per device.
//
// Every device starts at zero. Connections with no transmitter are skipped.
// Unicast costs the transmitter one bundle per receiver; multicast costs it one flow in total.
// Each receiver pays one bundle (unicast) or one flow (multicast).
// References to ids missing from devices contribute nothing.
func ComputeUsage(devices []Device, connections []Connection) Usage {
	u := Usage{
		TxUsed: make(map[string]int, len(devices)),
		RxUsed: make(map[string]int, len(devices)),
	}
	for _, d := range devices {
		u.TxUsed[d.ID] = 0
		u.RxUsed[d.ID] = 0
	}

	for _, c := range connections {
		if c.Transmitter == "" {
			continue
		}

		switch c.Mode {
		case Unicast:
			needed := UnicastFlows(c.Channels)
			for _, rx := range c.Receivers {
				u.add(u.TxUsed, c.Transmitter, needed)
				u.add(u.RxUsed, rx, needed)
			}
		case Multicast:
			u.add(u.TxUsed, c.Transmitter, 1)
			for _, rx := range c.Receivers {
				u.add(u.RxUsed, rx, 1)
			}
		}
	}

	for _, n := range u.TxUsed {
		u.TotalTx += n
	}
	for _, n := range u.RxUsed {
		u.TotalRx += n
	}
	return u
}

// add increments m[id] only when id is a known device.
func (u Usage) add(m map[string]int, id string, n int) {
	if _, ok := m[id]; ok {
		m[id] += n
	}
}
