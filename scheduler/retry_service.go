package scheduler

import (
	"context"
	"log"
	"time"

	"dropwatch/models"
)

// CheckFunc runs the full check pipeline for one product. Satisfied by
// PriceChecker.CheckProduct.
type CheckFunc func(ctx context.Context, p *models.TrackedProduct) (*models.AlertDecision, error)

// RetryService sweeps for products whose last check failed and re-runs them
// once their backoff has elapsed. The check itself handles marking success
// or the next failure.
type RetryService struct {
	products ProductStore
	check    CheckFunc
	interval time.Duration
	pacing   time.Duration
	stopChan chan struct{}
}

// NewRetryService builds the sweep with the same pacing as the main loop.
func NewRetryService(products ProductStore, check CheckFunc, pacing time.Duration) *RetryService {
	return &RetryService{
		products: products,
		check:    check,
		interval: 5 * time.Minute,
		pacing:   pacing,
		stopChan: make(chan struct{}),
	}
}

// Start starts the retry sweep loop.
func (rs *RetryService) Start() {
	log.Println("Starting retry service")

	go func() {
		ticker := time.NewTicker(rs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rs.processRetries()
			case <-rs.stopChan:
				log.Println("Retry service stopped")
				return
			}
		}
	}()
}

// Stop stops the retry sweep.
func (rs *RetryService) Stop() {
	close(rs.stopChan)
}

func (rs *RetryService) processRetries() {
	products, err := rs.products.GetProductsForRetry()
	if err != nil {
		log.Printf("Failed to get products for retry: %v", err)
		return
	}
	if len(products) == 0 {
		return
	}

	log.Printf("Retrying %d failed products", len(products))

	ctx := context.Background()
	ran := 0
	for i := range products {
		p := &products[i]
		if !p.ShouldRetry() {
			continue
		}
		if ran > 0 {
			time.Sleep(rs.pacing)
		}
		ran++

		log.Printf("Retrying price check for %s (attempt %d/5)", p.Name, p.RetryCount+1)
		if _, err := rs.check(ctx, p); err != nil {
			log.Printf("Retry failed for %s: %v", p.Name, err)
			continue
		}
		log.Printf("Retry successful for %s", p.Name)
	}
}
