package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/robotalks/aldl.go/pkg/aldl"
)

// Summary describes the samples in a Window.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// String implements fmt.Stringer.
func (s Summary) String() string {
	if s.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("n=%d mean=%.3f sd=%.3f min=%.3f p50=%.3f p90=%.3f max=%.3f lb/hr",
		s.Count, s.Mean, s.StdDev, s.Min, s.P50, s.P90, s.Max)
}

// Window keeps the most recent samples.
type Window struct {
	values []float64
	next   int
	full   bool
}

// NewWindow creates a Window holding up to size samples.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{values: make([]float64, 0, size)}
}

// Add appends a sample, evicting the oldest when full.
func (w *Window) Add(s aldl.Sample) {
	if !w.full {
		w.values = append(w.values, s.LbPerHour)
		w.full = len(w.values) == cap(w.values)
		return
	}
	w.values[w.next] = s.LbPerHour
	w.next = (w.next + 1) % len(w.values)
}

// Len returns the number of samples held.
func (w *Window) Len() int {
	return len(w.values)
}

// Summary computes statistics over the window.
func (w *Window) Summary() Summary {
	return Summarize(w.values)
}

// Summarize computes statistics of lb/hr values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := Summary{
		Count: len(sorted),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	sum.Mean, sum.StdDev = stat.MeanStdDev(sorted, nil)
	if math.IsNaN(sum.StdDev) {
		sum.StdDev = 0
	}
	return sum
}
