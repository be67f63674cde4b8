package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	fuelcell "Polarcell/internal/calc/fuelcell"
	log "github.com/sirupsen/logrus"
)

type Input struct {
	Items []fuelcell.Input `json:"items"`
}

// Item is the outcome for one request entry. Exactly one of Result and
// Error is set.
type Item struct {
	Index  int                 `json:"index"`
	Result *fuelcell.Result    `json:"result,omitempty"`
	Error  *fuelcell.ErrorBody `json:"error,omitempty"`
}

type Result struct {
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
	Results []Item `json:"results"`
}

// Runner evaluates parameter sets on a bounded pool of goroutines.
type Runner struct {
	Model   fuelcell.Calculator
	Workers int
}

func (r Runner) workers(n int) int {
	w := r.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	return w
}

// Calculate evaluates every item and returns the outcomes in request order.
// A failing item does not stop the others. Cancelling ctx stops dispatching;
// items not yet started are reported with the context error.
func (r Runner) Calculate(ctx context.Context, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("no items")
	}
	out := Result{Count: len(in.Items), Results: make([]Item, len(in.Items))}
	for i := range out.Results {
		out.Results[i].Index = i
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers(len(in.Items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := r.Model.Calculate(in.Items[i])
				if err != nil {
					body := fuelcell.Describe(err)
					out.Results[i].Error = &body
					continue
				}
				out.Results[i].Result = &res
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(in.Items); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(in.Items); i++ {
		out.Results[i].Error = &fuelcell.ErrorBody{Error: "Canceled", Message: ctx.Err().Error()}
	}
	for _, it := range out.Results {
		if it.Error != nil {
			out.Failed++
		}
	}
	log.WithFields(log.Fields{"count": out.Count, "failed": out.Failed}).Debug("batch: evaluated")
	return out, nil
}
