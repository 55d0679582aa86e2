package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/robfig/cron/v3"

	"dropwatch/config"
	"dropwatch/export"
	"dropwatch/models"
	"dropwatch/notify"
	"dropwatch/scraper"
)

// ProductStore is the checker's view of the tracked-product table.
type ProductStore interface {
	GetProducts() ([]models.TrackedProduct, error)
	FindByKey(key string) (*models.TrackedProduct, error)
	AddProduct(spec models.ProductSpec, site models.Site) (*models.TrackedProduct, error)
	UpdatePrice(id int, price int) error
	MarkCheckFailed(p *models.TrackedProduct) error
	MarkCheckSuccess(id int) error
	GetProductsForRetry() ([]models.TrackedProduct, error)
}

// HistoryStore is the checker's view of the append-only price log.
type HistoryStore interface {
	Append(obs models.PriceObservation) error
	AllObservations() ([]models.PriceObservation, error)
	Prune(before time.Time) (int64, error)
}

// PageFetcher downloads a product page body.
type PageFetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// PIDClient resolves a Flipkart PID to a price without scraping a page.
type PIDClient interface {
	FetchPrice(ctx context.Context, pid string) (int, error)
}

// Detector classifies a fresh price against the stored history.
type Detector interface {
	Detect(productKey string, newPrice int, now time.Time) (models.AlertDecision, error)
}

// Deps are the checker's collaborators, wired once in main.
type Deps struct {
	Config   *config.Config
	Products ProductStore
	History  HistoryStore
	Fetcher  PageFetcher
	Engine   *scraper.Engine
	Flipkart PIDClient
	Detector Detector
	Notifier notify.Notifier
}

// PriceChecker runs the scheduled check loop. A run walks the tracked list
// strictly in insertion order, one product at a time, pausing between
// products so the target sites see a slow, polite client. A failing product
// never stops the run.
type PriceChecker struct {
	cron *cron.Cron
	d    Deps

	// serializes scheduled, manual and retry-triggered runs
	runMu sync.Mutex
}

// NewPriceChecker wires the check loop.
func NewPriceChecker(d Deps) *PriceChecker {
	return &PriceChecker{
		cron: cron.New(cron.WithSeconds()),
		d:    d,
	}
}

// Start schedules the periodic check and kicks off an immediate first run.
func (pc *PriceChecker) Start() error {
	if _, err := pc.cron.AddFunc(pc.d.Config.CheckSchedule, pc.CheckAll); err != nil {
		return fmt.Errorf("schedule price checks: %w", err)
	}

	if pc.d.Config.HistoryRetentionDays > 0 {
		if _, err := pc.cron.AddFunc("0 0 4 * * *", pc.pruneHistory); err != nil {
			return fmt.Errorf("schedule history pruning: %w", err)
		}
	}

	// Also run immediately on startup
	go pc.CheckAll()

	pc.cron.Start()
	log.Printf("Price checker scheduled with %q", pc.d.Config.CheckSchedule)
	return nil
}

// Stop stops the scheduled price checking.
func (pc *PriceChecker) Stop() {
	if pc.cron != nil {
		pc.cron.Stop()
	}
}

// SyncProducts makes sure every spec from the product list file has a row.
// Existing rows are left alone, so file edits never reset history.
func (pc *PriceChecker) SyncProducts(specs []models.ProductSpec) {
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			log.Printf("Skipping product entry: %v", err)
			continue
		}

		existing, err := pc.d.Products.FindByKey(spec.Key())
		if err != nil {
			log.Printf("Failed to look up %s: %v", spec.Key(), err)
			continue
		}
		if existing != nil {
			continue
		}

		site := scraper.Classify(spec.URL)
		if spec.URL == "" {
			site = models.SiteFlipkart
		}

		if _, err := pc.d.Products.AddProduct(spec, site); err != nil {
			log.Printf("Failed to add %s: %v", spec.DisplayName(), err)
			continue
		}
		log.Printf("Now tracking %s (%s)", spec.DisplayName(), site)
	}
}

// CheckAll checks every tracked product sequentially with pacing in between,
// then refreshes the CSV and chart exports.
func (pc *PriceChecker) CheckAll() {
	pc.runMu.Lock()
	defer pc.runMu.Unlock()

	log.Println("Starting price check for all tracked products")

	products, err := pc.d.Products.GetProducts()
	if err != nil {
		log.Printf("Failed to get tracked products: %v", err)
		return
	}
	if len(products) == 0 {
		log.Println("No products to check")
		return
	}

	log.Printf("Checking prices for %d products", len(products))

	ctx := context.Background()
	for i := range products {
		if i > 0 {
			time.Sleep(pc.d.Config.PacingDelay)
		}

		p := &products[i]
		decision, err := pc.CheckProduct(ctx, p)
		if err != nil {
			log.Printf("Check failed for %s: %v", p.Name, err)
			continue
		}
		log.Printf("Checked %s: %s at %s", p.Name, decision.Kind, notify.Rupees(decision.NewPrice))
	}

	pc.exportAll()
}

// ManualCheck allows manual triggering of a full run.
func (pc *PriceChecker) ManualCheck() {
	log.Println("Manual price check triggered")
	pc.CheckAll()
}

// CheckProduct runs the whole pipeline for one product: resolve a price,
// classify it against history, persist the observation and deliver the alert.
// Persistence happens after classification, so the detector always compares
// against the previous observation.
func (pc *PriceChecker) CheckProduct(ctx context.Context, p *models.TrackedProduct) (*models.AlertDecision, error) {
	price, err := pc.resolvePrice(ctx, p)
	if err != nil {
		if markErr := pc.d.Products.MarkCheckFailed(p); markErr != nil {
			log.Printf("Failed to record check failure for %s: %v", p.Name, markErr)
		}
		return nil, err
	}

	now := time.Now()
	decision, err := pc.d.Detector.Detect(p.Key(), price, now)
	if err != nil {
		return nil, fmt.Errorf("classify price for %s: %w", p.Name, err)
	}

	obs := models.PriceObservation{
		ProductKey: p.Key(),
		Site:       p.Site,
		Name:       p.Name,
		Price:      price,
		CheckedAt:  now,
	}
	if err := pc.d.History.Append(obs); err != nil {
		return nil, fmt.Errorf("record observation for %s: %w", p.Name, err)
	}

	if err := pc.d.Products.UpdatePrice(p.ID, price); err != nil {
		log.Printf("Failed to update current price for %s: %v", p.Name, err)
	}
	if err := pc.d.Products.MarkCheckSuccess(p.ID); err != nil {
		log.Printf("Failed to reset retry state for %s: %v", p.Name, err)
	}

	if decision.ShouldNotify() && pc.d.Notifier != nil {
		alert := notify.Alert{Name: p.Name, URL: p.URL, Decision: decision}
		if err := pc.d.Notifier.Send(ctx, alert); err != nil {
			log.Printf("Failed to deliver alert for %s: %v", p.Name, err)
		}
	}

	return &decision, nil
}

// resolvePrice gets a price for the product. A PID goes through the Flipkart
// JSON APIs first; a page URL is fetched and run through the staged selector.
// A product with both falls back to the page when the PID lookup fails.
func (pc *PriceChecker) resolvePrice(ctx context.Context, p *models.TrackedProduct) (int, error) {
	if p.FlipkartPID != "" && pc.d.Flipkart != nil {
		price, err := pc.d.Flipkart.FetchPrice(ctx, p.FlipkartPID)
		if err == nil {
			return price, nil
		}
		if p.URL == "" {
			return 0, fmt.Errorf("pid lookup for %s: %w", p.FlipkartPID, err)
		}
		log.Printf("PID lookup failed for %s, falling back to page scrape: %v", p.Name, err)
	}

	body, err := pc.d.Fetcher.Get(ctx, p.URL)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", p.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", p.URL, err)
	}

	price, err := pc.d.Engine.SelectPrice(doc, doc.Text(), p.Site)
	if err != nil {
		return 0, fmt.Errorf("select price for %s: %w", p.URL, err)
	}
	return price, nil
}

// exportAll rewrites the CSV snapshot and the per-product charts from the
// full history.
func (pc *PriceChecker) exportAll() {
	observations, err := pc.d.History.AllObservations()
	if err != nil {
		log.Printf("Failed to load history for export: %v", err)
		return
	}
	if len(observations) == 0 {
		return
	}

	if pc.d.Config.CSVPath != "" {
		if err := export.WriteCSV(pc.d.Config.CSVPath, observations); err != nil {
			log.Printf("Failed to write CSV export: %v", err)
		}
	}
	if pc.d.Config.GraphsDir != "" {
		if n, err := export.WriteCharts(pc.d.Config.GraphsDir, observations); err != nil {
			log.Printf("Failed to write charts: %v", err)
		} else {
			log.Printf("Wrote %d price charts", n)
		}
	}
}

func (pc *PriceChecker) pruneHistory() {
	cutoff := time.Now().AddDate(0, 0, -pc.d.Config.HistoryRetentionDays)
	n, err := pc.d.History.Prune(cutoff)
	if err != nil {
		log.Printf("Failed to prune history: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d observations older than %s", n, cutoff.Format("2006-01-02"))
	}
}
