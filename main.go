package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"dropwatch/config"
	"dropwatch/database"
	"dropwatch/fetcher"
	"dropwatch/handlers"
	"dropwatch/middleware"
	"dropwatch/notify"
	"dropwatch/repository"
	"dropwatch/scheduler"
	"dropwatch/scraper"
	"dropwatch/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Repositories
	productRepo := repository.NewProductRepository()
	historyRepo := repository.NewHistoryRepository()

	// Extraction pipeline
	pageFetcher := fetcher.New(cfg.Fetch)
	defer pageFetcher.Close()

	engine := scraper.NewEngine(cfg.Bounds)
	flipkartClient := scraper.NewFlipkartClient(cfg.Flipkart, pageFetcher, cfg.Bounds)
	detector := services.NewChangeDetector(historyRepo, cfg.RollingWindow)

	// Alert channels
	var channels []notify.Notifier
	if cfg.Telegram.Enabled() {
		channels = append(channels, notify.NewTelegram(cfg.Telegram))
		log.Println("Telegram alerts enabled")
	}
	if cfg.Email.Enabled() {
		channels = append(channels, notify.NewEmail(cfg.Email))
		log.Println("Email alerts enabled")
	}
	if len(channels) == 0 {
		log.Println("No alert channels configured, alerts will only be logged")
	}
	notifier := notify.NewFanout(channels...)

	// Price checker
	checker := scheduler.NewPriceChecker(scheduler.Deps{
		Config:   cfg,
		Products: productRepo,
		History:  historyRepo,
		Fetcher:  pageFetcher,
		Engine:   engine,
		Flipkart: flipkartClient,
		Detector: detector,
		Notifier: notifier,
	})

	// Seed the tracked list from the products file, if one exists
	if specs, err := config.LoadProducts(cfg.ProductsFile); err != nil {
		log.Printf("Could not load products file %s: %v", cfg.ProductsFile, err)
	} else if len(specs) > 0 {
		checker.SyncProducts(specs)
	}

	if err := checker.Start(); err != nil {
		log.Fatalf("Failed to start price checker: %v", err)
	}
	defer checker.Stop()

	// Retry sweep for failed checks
	retryService := scheduler.NewRetryService(productRepo, checker.CheckProduct, cfg.PacingDelay)
	retryService.Start()
	defer retryService.Stop()

	// HTTP API
	h := handlers.NewHandlers(cfg, productRepo, historyRepo, checker)
	defer h.Close()

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.API.RequestsPerSecond))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/products", h.AddProduct).Methods("POST")
	apiV1.HandleFunc("/products", h.GetProducts).Methods("GET")
	apiV1.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	apiV1.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")
	apiV1.HandleFunc("/products/{id}/check", h.CheckPriceNow).Methods("POST")
	apiV1.HandleFunc("/products/{id}/check-async", h.CheckPriceNowAsync).Methods("POST")
	apiV1.HandleFunc("/products/{id}/history", h.GetPriceHistory).Methods("GET")
	apiV1.HandleFunc("/products/{id}/chart", h.GetChart).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")
	apiV1.HandleFunc("/export/csv", h.ExportCSV).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.API.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := cfg.API.Host + ":" + cfg.API.Port
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, c.Handler(r)))
}
