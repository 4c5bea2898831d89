package flow

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomPlan deterministically expands seeds into a small plan over n devices.
func randomPlan(n int, seeds []int) ([]Device, []Connection) {
	devs := make([]Device, n)
	for i := range devs {
		devs[i] = Device{ID: fmt.Sprintf("d%d", i), TxCapacity: i % 5, RxCapacity: (i * 3) % 7}
	}

	conns := make([]Connection, 0, len(seeds))
	for i, s := range seeds {
		tx := s % n
		c := Connection{
			ID:          fmt.Sprintf("c%d", i),
			Transmitter: devs[tx].ID,
			Channels:    (s/7)%17 - 2, // includes non-positive counts
			Mode:        Mode((s / 3) % 2),
		}
		for k := 1; k <= 1+(s/11)%n; k++ {
			rx := (tx + k) % n
			if rx != tx {
				c.Receivers = append(c.Receivers, devs[rx].ID)
			}
		}
		if s%13 == 0 {
			c.Transmitter = "" // inert connection
		}
		conns = append(conns, c)
	}
	return devs, conns
}

func TestFlowAccountingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("unicast costs n*ceil(c/4) on the transmitter and ceil(c/4) per receiver", prop.ForAll(
		func(channels, n int) bool {
			ids := []string{"tx"}
			for i := 0; i < n; i++ {
				ids = append(ids, fmt.Sprintf("rx%d", i))
			}
			c := Connection{ID: "c", Transmitter: "tx", Receivers: ids[1:], Channels: channels, Mode: Unicast}
			u := ComputeUsage(devices(ids...), []Connection{c})

			ch := max(channels, 1)
			need := (ch + 3) / 4
			if u.TxUsed["tx"] != n*need {
				return false
			}
			for _, rx := range ids[1:] {
				if u.RxUsed[rx] != need {
					return false
				}
			}
			return true
		},
		gen.IntRange(-4, 128),
		gen.IntRange(1, 12),
	))

	properties.Property("multicast costs one transmit flow and one receive flow per receiver", prop.ForAll(
		func(channels, n, groupSize int) bool {
			ids := []string{"tx"}
			for i := 0; i < n; i++ {
				ids = append(ids, fmt.Sprintf("rx%d", i))
			}
			c := Connection{ID: "c", Transmitter: "tx", Receivers: ids[1:], Channels: channels, GroupSize: groupSize, Mode: Multicast}
			u := ComputeUsage(devices(ids...), []Connection{c})

			if u.TxUsed["tx"] != 1 || u.TotalRx != n {
				return false
			}
			for _, rx := range ids[1:] {
				if u.RxUsed[rx] != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 128),
		gen.IntRange(1, 24),
		gen.OneConstOf(0, 2, 4, 8, 16),
	))

	properties.Property("totals equal the sum of per-device usage", prop.ForAll(
		func(n int, seeds []int) bool {
			u := ComputeUsage(randomPlan(n, seeds))
			tx, rx := 0, 0
			for _, v := range u.TxUsed {
				tx += v
			}
			for _, v := range u.RxUsed {
				rx += v
			}
			return tx == u.TotalTx && rx == u.TotalRx
		},
		gen.IntRange(1, 8),
		gen.SliceOf(gen.IntRange(0, 1<<16)),
	))

	properties.Property("computation is idempotent", prop.ForAll(
		func(n int, seeds []int) bool {
			devs, conns := randomPlan(n, seeds)
			return reflect.DeepEqual(ComputeUsage(devs, conns), ComputeUsage(devs, conns))
		},
		gen.IntRange(1, 8),
		gen.SliceOf(gen.IntRange(0, 1<<16)),
	))

	properties.Property("capacity flag is strict", prop.ForAll(
		func(capacity int) bool {
			return !IsOverCapacity(capacity, capacity) && IsOverCapacity(capacity, capacity+1)
		},
		gen.IntRange(0, 1<<20),
	))

	properties.Property("device removal leaves no dangling or empty connections", prop.ForAll(
		func(n int, seeds []int, pick int) bool {
			devs, conns := randomPlan(n, seeds)
			victim := devs[pick%n].ID

			outDevs, outConns, _, err := RemoveDevice(devs, conns, victim)
			if err != nil || len(outDevs) != n-1 {
				return false
			}
			for _, c := range outConns {
				if c.Transmitter == "" || c.Transmitter == victim || len(c.Receivers) == 0 {
					return false
				}
				for _, rx := range c.Receivers {
					if rx == victim {
						return false
					}
				}
			}
			// inputs untouched
			_, ok := FindDevice(devs, victim)
			return ok && len(conns) == len(seeds)
		},
		gen.IntRange(1, 8),
		gen.SliceOf(gen.IntRange(0, 1<<16)),
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}
