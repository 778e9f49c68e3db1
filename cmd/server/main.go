package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_back_end/internal/cache"
	"pos_back_end/internal/cart"
	"pos_back_end/internal/checkout"
	"pos_back_end/internal/config"
	"pos_back_end/internal/database"
	"pos_back_end/internal/handlers"
	"pos_back_end/internal/logger"
	"pos_back_end/internal/middleware"
	"pos_back_end/internal/mockdata"
	"pos_back_end/internal/routes"
	"pos_back_end/internal/services"
	"pos_back_end/internal/settings"
	"pos_back_end/internal/store"
)

func main() {
	cfg, envLoaded := config.Load()
	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	if !envLoaded {
		log.Info("ℹ️ Aucun fichier .env trouvé, variables d'environnement uniquement")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients := database.Connect(ctx, cfg, log)
	defer clients.Close()

	// ✅ Jeu de données de démonstration
	dataset, err := mockdata.Generate(mockdata.Options{
		Seed:            cfg.Mock.Seed,
		Now:             time.Now(),
		AdminPassword:   cfg.Mock.AdminPassword,
		CashierPassword: cfg.Mock.CashierPassword,
	})
	if err != nil {
		log.Fatal("❌ Génération des données de démonstration", zap.Error(err))
	}
	db := store.NewSeeded(dataset)
	log.Info("✅ Données de démonstration chargées",
		zap.Int("products", len(dataset.Products)),
		zap.Int("orders", len(dataset.Orders)),
		zap.Int("suppliers", len(dataset.Suppliers)),
	)

	latency := mockdata.Latency{}
	if cfg.Mock.Latency {
		latency = mockdata.DefaultLatency()
	}
	mock := mockdata.NewService(db, latency)

	var cartStore cart.Store = cart.NewMemoryStore()
	var settingsStore settings.Store = settings.NewFileStore(cfg.Settings.File)
	if clients.Redis != nil {
		cartStore = cart.NewRedisStore(clients.Redis)
		settingsStore = settings.NewRedisStore(clients.Redis)
	}

	carts := cart.NewService(cartStore, db, log)
	checkouts := checkout.NewManager(carts, settingsStore, db, log, checkout.WithDelay(cfg.Checkout.Delay))

	search := services.NewProductIndex(clients.Elastic, cfg.Elastic.Index, log)
	if search.Enabled() {
		if err := search.IndexAll(ctx, db.ListProducts(ctx)); err != nil {
			log.Warn("⚠️ Indexation initiale du catalogue", zap.Error(err))
		}
	}

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Log:      log,
		Store:    db,
		Mock:     mock,
		Carts:    carts,
		Checkout: checkouts,
		Settings: settingsStore,
		Search:   search,
		Images:   services.NewImageStore(clients.MinIO, cfg.MinIO.Bucket, cfg.MinIO.Endpoint, cfg.MinIO.UseSSL),
		Mailer:   services.NewMailer(cfg.SMTP, log),
		Tokens:   cache.NewBlacklist(clients.Redis, log),
		Redis:    clients.Redis,
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Serveur POS lancé", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Erreur serveur HTTP", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Arrêt du serveur")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ Arrêt forcé", zap.Error(err))
	}
}
