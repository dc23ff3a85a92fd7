package jobs

import (
	"context"
	"time"

	"shelfspace-backend/internal/logger"
)

// ExpireStaleRequests moves rental requests that were never paid within the
// configured window to EXPIRED.
func (jr *JobRunner) ExpireStaleRequests() {
	jr.runWithRecovery("expire-stale-requests", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Platform.PendingExpiryHours) * time.Hour)

		expired, err := jr.services.Rental.ExpireStaleRequests(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to expire stale rental requests", "error", err)
			return
		}
		if len(expired) > 0 {
			logger.Info("Expired stale rental requests", "count", len(expired), "ids", expired)
		}
	})
}

// CompleteElapsedRentals closes out active rentals whose end date has passed
// and returns their shelves to the marketplace.
func (jr *JobRunner) CompleteElapsedRentals() {
	jr.runWithRecovery("complete-elapsed-rentals", func() {
		ctx := context.Background()

		count, err := jr.services.Rental.CompleteElapsedRentals(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to complete elapsed rentals", "error", err)
			return
		}
		if count > 0 {
			logger.Info("Completed elapsed rentals", "count", count)
		}
	})
}
