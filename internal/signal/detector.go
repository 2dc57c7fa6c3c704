// Package signal computes behavioral metrics from windowed transaction data.
//
// Each detector is a pure function of one analysis window. Missing data is
// reported as a nil signal, never as an error and never as a fabricated
// zero measurement.
package signal

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
)

// Detector computes one behavioral metric bundle from an analysis window.
// A nil signal with a nil error means the window held insufficient data
// for this metric.
type Detector interface {
	Type() model.SignalType
	Detect(ctx context.Context, w window.Window) (*model.Signal, error)
}

// DefaultDetectors returns the full detector set in deterministic order.
func DefaultDetectors() []Detector {
	return []Detector{
		NewSubscriptionDetector(),
		NewUtilizationDetector(),
		NewIncomeDetector(),
		NewSavingsDetector(),
	}
}

// RunAll executes every detector against the window concurrently and
// returns the non-nil signals sorted by type. Detectors share no mutable
// state, so the fan-out is safe; the sort keeps output order deterministic.
func RunAll(ctx context.Context, detectors []Detector, w window.Window) ([]model.Signal, error) {
	results := make([]*model.Signal, len(detectors))
	errs := make([]error, len(detectors))

	var wg sync.WaitGroup
	for i, d := range detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			results[i], errs[i] = d.Detect(ctx, w)
		}(i, d)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", detectors[i].Type(), err)
		}
	}

	signals := make([]model.Signal, 0, len(detectors))
	for _, s := range results {
		if s != nil {
			signals = append(signals, *s)
		}
	}
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Type < signals[j].Type
	})
	return signals, nil
}

// round2 rounds to two decimals so persisted values are byte-stable.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// coefficientOfVariation returns stddev/mean, or 0 for a zero mean.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 || len(values) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(len(values))) / math.Abs(m)
}

// gapsInDays returns the day gaps between consecutive dates. The input
// transactions must already be sorted by date.
func gapsInDays(txns []model.Transaction) []float64 {
	if len(txns) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(txns)-1)
	for i := 1; i < len(txns); i++ {
		gaps = append(gaps, txns[i].Date.Sub(txns[i-1].Date).Hours()/24)
	}
	return gaps
}
