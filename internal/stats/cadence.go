package stats

import (
	"time"

	"issue-history/internal/history"
)

// WindowCadence is the open/close activity of one step window.
type WindowCadence struct {
	WindowStart time.Time `json:"windowStart"`
	Opened      int       `json:"opened"`
	Closed      int       `json:"closed"`
	Net         int       `json:"net"` // opened - closed
}

// CadenceResult is the per-window activity plus distributions across windows.
type CadenceResult struct {
	Windows []WindowCadence `json:"windows"`
	Opened  Distribution    `json:"opened"`
	Closed  Distribution    `json:"closed"`
}

// CalculateCadence aggregates the issues opened and closed per window of a reconstruction.
func CalculateCadence(deltas []history.Delta) CadenceResult {
	res := CadenceResult{Windows: make([]WindowCadence, 0, len(deltas))}
	opened := make([]float64, 0, len(deltas))
	closed := make([]float64, 0, len(deltas))

	for _, d := range deltas {
		wc := WindowCadence{
			WindowStart: d.Window.Start,
			Opened:      len(d.Opened),
			Closed:      len(d.Closed),
		}
		wc.Net = wc.Opened - wc.Closed
		res.Windows = append(res.Windows, wc)
		opened = append(opened, float64(wc.Opened))
		closed = append(closed, float64(wc.Closed))
	}

	res.Opened = NewDistribution(opened)
	res.Closed = NewDistribution(closed)
	return res
}
