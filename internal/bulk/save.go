package bulk

import (
	"context"

	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/store"
)

// Tally counts the outcome of a bulk save.
type Tally struct {
	Success int `json:"success" yaml:"success"`
	Failed  int `json:"failed" yaml:"failed"`
}

// Total is the number of items processed.
func (t Tally) Total() int {
	return t.Success + t.Failed
}

// Progress is reported after every item.
type Progress struct {
	Processed int
	Selected  int
	Percent   float64
	Item      models.EstimationResult
	Err       error
}

// Save writes items one at a time. An item that fails is counted and the loop
// moves on; a cancelled context counts every remaining item as failed. The
// progress callback, when set, runs after each item and carries that item's error.
func Save(ctx context.Context, items []models.EstimationResult, writer store.EstimationWriter, progress func(Progress)) Tally {
	var tally Tally
	for i, item := range items {
		err := ctx.Err()
		if err == nil {
			err = writer.SaveEstimation(ctx, item)
		}

		if err != nil {
			tally.Failed++
		} else {
			tally.Success++
		}

		if progress != nil {
			progress(Progress{
				Processed: i + 1,
				Selected:  len(items),
				Percent:   float64(i+1) / float64(len(items)) * 100,
				Item:      item,
				Err:       err,
			})
		}
	}
	return tally
}
