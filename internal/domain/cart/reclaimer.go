// internal/domain/cart/reclaimer.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reclaimer bounds the lifetime of a stock reservation. Carts whose
// last-modified timestamp falls outside the inactivity window are emptied,
// their reserved stock returned to the shelf, and the cart row removed.
//
// The job is fire-and-forget: per-cart failures are logged and skipped so one
// bad row cannot halt reclamation of the rest, and a pass never reports an
// error to its caller.
type Reclaimer struct {
	db       *gorm.DB
	log      *logrus.Entry
	interval time.Duration
	window   time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewReclaimer creates a reclaimer with timing taken from configuration.
func NewReclaimer(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Reclaimer {
	return &Reclaimer{
		db:       db,
		log:      logger.WithField("component", "cart_reclaimer"),
		interval: cfg.Cart.ReclaimInterval,
		window:   cfg.Cart.InactivityWindow,
	}
}

// Start launches the periodic reclamation loop. It runs for the lifetime of
// the process unless Stop is called.
func (r *Reclaimer) Start() {
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.log.WithFields(logrus.Fields{
			"interval": r.interval.String(),
			"window":   r.window.String(),
		}).Info("Cart reclaimer started")

		for {
			select {
			case <-ticker.C:
				r.RunOnce(context.Background())
			case <-r.stop:
				r.log.Info("Cart reclaimer stopped")
				return
			}
		}
	}()
}

// Stop terminates the reclamation loop and waits for it to exit. Safe to call
// only after Start.
func (r *Reclaimer) Stop() {
	close(r.stop)
	<-r.done
}

// RunOnce performs a single reclamation pass and returns the number of carts
// reclaimed. Exposed so tests and operators can trigger a pass
// deterministically instead of waiting on the ticker.
func (r *Reclaimer) RunOnce(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-r.window)

	var stale []Cart
	if err := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Find(&stale).Error; err != nil {
		r.log.WithError(err).Error("Failed to scan for abandoned carts")
		return 0
	}

	reclaimed := 0
	for _, userCart := range stale {
		if err := r.reclaimCart(ctx, userCart); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"cart_id": userCart.ID,
				"user_id": userCart.UserID,
			}).Error("Failed to reclaim cart, skipping")
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		r.log.WithFields(logrus.Fields{
			"reclaimed": reclaimed,
			"cutoff":    cutoff.Format(time.RFC3339),
		}).Info("Reclaimed abandoned carts")
	}

	return reclaimed
}

// reclaimCart restores one cart's reserved stock and deletes the cart. Runs
// in its own transaction so a failure leaves that cart intact for the next
// pass without affecting the others in the batch.
func (r *Reclaimer) reclaimCart(ctx context.Context, userCart Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []CartItem
		if err := tx.Where("cart_id = ?", userCart.ID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}

		// Restock each line; a line whose product no longer exists is an
		// orphan, its units are gone but the line is still removed.
		if err := restockItems(tx, items); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", userCart.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}

		if err := tx.Delete(&Cart{}, userCart.ID).Error; err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}

		return nil
	})
}
