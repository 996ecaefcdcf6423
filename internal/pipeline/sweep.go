package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/payoff"
)

// ProgressFunc is called as work completes.
// current is the number of jobs finished so far, total is the job count.
type ProgressFunc func(current, total int)

// SweepPoint is the strategy comparison at one extra payment level.
type SweepPoint struct {
	Extra      money.Cents              `json:"extra_cents"`
	Comparison model.StrategyComparison `json:"comparison"`
}

// SweepExtraPayments compares both strategies at every extra amount, in
// parallel with a bounded worker pool. Results keep the order of extras.
func SweepExtraPayments(debts []model.CreditCardDebt, opts payoff.Options, extras []money.Cents, progressFn ProgressFunc) []SweepPoint {
	if len(extras) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(extras) {
		numWorkers = len(extras)
	}

	work := make(chan int, len(extras))
	results := make([]SweepPoint, len(extras))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range extras {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				o := opts
				o.ExtraPayment = extras[idx]
				results[idx] = SweepPoint{Extra: extras[idx], Comparison: payoff.Compare(debts, o)}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(extras))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// MaxSweepSteps bounds how many extra-payment levels one sweep simulates.
const MaxSweepSteps = 500

// ExtraSteps returns from, from+step, ... up to and including to. Ranges
// needing more than MaxSweepSteps levels are rejected.
func ExtraSteps(from, to, step money.Cents) ([]money.Cents, error) {
	if step <= 0 || to < from {
		return []money.Cents{from}, nil
	}
	n := (to-from)/step + 1
	if n > MaxSweepSteps {
		return nil, fmt.Errorf("sweep of %d steps exceeds the limit of %d; use a larger step", int64(n), MaxSweepSteps)
	}
	out := make([]money.Cents, 0, n)
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out, nil
}
