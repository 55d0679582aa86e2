package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"dropwatch/config"
	"dropwatch/export"
	"dropwatch/models"
	"dropwatch/scheduler"
	"dropwatch/scraper"
)

// ProductStore is the API's view of the tracked-product table.
type ProductStore interface {
	GetProducts() ([]models.TrackedProduct, error)
	GetProductByID(id int) (*models.TrackedProduct, error)
	FindByKey(key string) (*models.TrackedProduct, error)
	AddProduct(spec models.ProductSpec, site models.Site) (*models.TrackedProduct, error)
	DeleteProduct(id int) error
}

// HistoryStore is the API's read-only view of the price log.
type HistoryStore interface {
	GetHistory(productKey string, limit int) ([]models.PriceObservation, error)
	AllObservations() ([]models.PriceObservation, error)
}

// Checker runs the check pipeline for one product.
type Checker interface {
	CheckProduct(ctx context.Context, p *models.TrackedProduct) (*models.AlertDecision, error)
}

type Handlers struct {
	cfg         *config.Config
	products    ProductStore
	history     HistoryStore
	checker     Checker
	taskManager *scheduler.TaskManager
}

func NewHandlers(cfg *config.Config, products ProductStore, history HistoryStore, checker Checker) *Handlers {
	h := &Handlers{
		cfg:      cfg,
		products: products,
		history:  history,
		checker:  checker,
	}

	h.taskManager = scheduler.NewTaskManager(h.performPriceCheck, 5)
	return h
}

// Close stops the background task machinery.
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// performPriceCheck is the TaskManager entry point.
func (h *Handlers) performPriceCheck(productID int) (*models.AlertDecision, error) {
	product, err := h.products.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %v", err)
	}

	if !product.CanRetry() {
		nextRetry := "unknown"
		if product.NextRetryAt != nil {
			nextRetry = product.NextRetryAt.Format("15:04")
		}
		return nil, fmt.Errorf("price check failed recently, next retry at %s", nextRetry)
	}

	return h.checker.CheckProduct(context.Background(), product)
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "dropwatch",
	})
}

// AddProduct starts tracking a new product
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	spec := models.ProductSpec{URL: req.URL, FlipkartPID: req.FlipkartPID, Name: req.Name}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.products.FindByKey(spec.Key())
	if err != nil {
		log.Printf("Failed to look up product: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add product")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Product is already tracked")
		return
	}

	site := scraper.Classify(spec.URL)
	if spec.URL == "" {
		site = models.SiteFlipkart
	}

	product, err := h.products.AddProduct(spec, site)
	if err != nil {
		log.Printf("Failed to add product: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add product")
		return
	}

	// first observation in the background so the response stays fast
	go func() {
		if _, err := h.checker.CheckProduct(context.Background(), product); err != nil {
			log.Printf("Initial check failed for %s: %v", product.Name, err)
		}
	}()

	writeJSON(w, http.StatusCreated, product)
}

// GetProducts returns all tracked products
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetProducts()
	if err != nil {
		log.Printf("Failed to get products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}
	if products == nil {
		products = []models.TrackedProduct{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns one tracked product by id
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct stops tracking a product
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(product.ID); err != nil {
		log.Printf("Failed to delete product %d: %v", product.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product removed from tracking"})
}

// CheckPriceNow runs a synchronous check and returns the decision
func (h *Handlers) CheckPriceNow(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}

	decision, err := h.checker.CheckProduct(r.Context(), product)
	if err != nil {
		log.Printf("Manual check failed for %s: %v", product.Name, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Price check failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// CheckPriceNowAsync queues a check and returns a task to poll
func (h *Handlers) CheckPriceNowAsync(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}

	task := h.taskManager.SubmitTask(product.ID)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns the state of an async check
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetPriceHistory returns the observation log for a product, oldest first
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	history, err := h.history.GetHistory(product.Key(), limit)
	if err != nil {
		log.Printf("Failed to get history for %s: %v", product.Name, err)
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}
	if history == nil {
		history = []models.PriceObservation{}
	}
	writeJSON(w, http.StatusOK, history)
}

// ExportCSV streams the full observation log as CSV
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	observations, err := h.history.AllObservations()
	if err != nil {
		log.Printf("Failed to load history for export: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export history")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="prices.csv"`)
	if err := export.Write(w, observations); err != nil {
		log.Printf("Failed to stream CSV: %v", err)
	}
}

// GetChart serves the rendered price chart for a product
func (h *Handlers) GetChart(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productFromPath(w, r)
	if !ok {
		return
	}

	path := filepath.Join(h.cfg.GraphsDir, export.ChartFilename(product.Key()))
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "No chart rendered yet for this product")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (h *Handlers) productFromPath(w http.ResponseWriter, r *http.Request) (*models.TrackedProduct, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return nil, false
	}

	product, err := h.products.GetProductByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return nil, false
	}
	return product, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
