package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cozycorner-be/internal/admin"
	"cozycorner-be/internal/cache"
	"cozycorner-be/internal/config"
	"cozycorner-be/internal/db"
	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/menu"
	"cozycorner-be/internal/middleware"
	"cozycorner-be/internal/notify"
	"cozycorner-be/internal/order"
	"cozycorner-be/internal/payment"
	"cozycorner-be/internal/payment/webhook"
	"cozycorner-be/internal/reservation"
	"cozycorner-be/internal/review"
	"cozycorner-be/internal/upload"
	"cozycorner-be/internal/user"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	menuCacheTTL      = 5 * time.Minute
	dashboardCacheTTL = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	handler, cleanup := newRouter(cfg, database)
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("shutdown did not complete cleanly", zap.Error(err))
	}
}

// newRouter assembles every repository, service and route. The returned
// cleanup closes the redis and kafka connections when configured.
func newRouter(cfg *config.Config, database *sql.DB) (http.Handler, func()) {
	cleanups := []func(){}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	var menuCache, dashboardCache *cache.Cache
	if cfg.RedisAddr != "" {
		redisClient := cache.NewClient(cfg.RedisAddr)
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		menuCache = cache.New(redisClient, menuCacheTTL)
		dashboardCache = cache.New(redisClient, dashboardCacheTTL)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.KafkaBrokers != "" {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		cleanups = append(cleanups, func() { _ = writer.Close() })
		notifier = notify.NewKafkaNotifier(writer)
	}

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	menuRepo := menu.NewRepository(database)
	menuSvc := menu.NewService(menuRepo, menuCache)
	menuHandler := menu.NewHandler(menuSvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, menuRepo, notifier)
	orderHandler := order.NewHandler(orderSvc)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paymentHandler := payment.NewHandler(gateway, orderRepo)
	webhookHandler := webhook.NewHandler(orderSvc, gateway)

	reservationRepo := reservation.NewRepository(database)
	reservationSvc := reservation.NewService(reservationRepo, notifier)
	reservationHandler := reservation.NewHandler(reservationSvc)

	reviewRepo := review.NewRepository(database)
	reviewSvc := review.NewService(reviewRepo, orderRepo)
	reviewHandler := review.NewHandler(reviewSvc)

	adminSvc := admin.NewService(orderRepo, reservationRepo, reviewRepo, menuRepo, userRepo, dashboardCache)
	adminHandler := admin.NewHandler(adminSvc, userSvc)

	store := upload.NewStore(cfg.UploadDir)
	uploadHandler := upload.NewHandler(store)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", userHandler.Login).Methods(http.MethodPost)
	api.Handle("/auth/me", middleware.RequireAuth(http.HandlerFunc(userHandler.Me))).Methods(http.MethodGet)

	// Menu
	api.HandleFunc("/menu", menuHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/menu/category/{category}", menuHandler.ByCategory).Methods(http.MethodGet)
	api.HandleFunc("/menu/search/{query}", menuHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/menu/featured/items", menuHandler.Featured).Methods(http.MethodGet)
	api.HandleFunc("/menu/{id:[0-9]+}", menuHandler.Get).Methods(http.MethodGet)
	api.Handle("/menu", middleware.RequireAdmin(http.HandlerFunc(menuHandler.Create))).Methods(http.MethodPost)
	api.Handle("/menu/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(menuHandler.Update))).Methods(http.MethodPut)
	api.Handle("/menu/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(menuHandler.Delete))).Methods(http.MethodDelete)

	// Orders
	api.Handle("/orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.Create))).Methods(http.MethodPost)
	api.Handle("/orders/my-orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.MyOrders))).Methods(http.MethodGet)
	api.Handle("/orders/stats/summary", middleware.RequireAdmin(http.HandlerFunc(orderHandler.Stats))).Methods(http.MethodGet)
	api.Handle("/orders/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(orderHandler.Get))).Methods(http.MethodGet)
	api.Handle("/orders/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(orderHandler.Cancel))).Methods(http.MethodDelete)
	api.Handle("/orders/{id:[0-9]+}/status", middleware.RequireAdmin(http.HandlerFunc(orderHandler.UpdateStatus))).Methods(http.MethodPatch, http.MethodPut)
	api.Handle("/orders/{id:[0-9]+}/cancel", middleware.RequireAuth(http.HandlerFunc(orderHandler.Cancel))).Methods(http.MethodPut)

	// Payments. The webhook route skips auth on purpose, Stripe signs its calls.
	api.Handle("/payments/create-payment-intent", middleware.RequireAuth(http.HandlerFunc(paymentHandler.CreateIntent))).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", webhookHandler.Webhook).Methods(http.MethodPost)
	api.Handle("/payments/verify/{id}", middleware.RequireAuth(http.HandlerFunc(paymentHandler.Verify))).Methods(http.MethodGet)

	// Reservations
	api.HandleFunc("/reservations/check-availability/{date}/{time}", reservationHandler.CheckAvailability).Methods(http.MethodGet)
	api.Handle("/reservations", middleware.RequireAuth(http.HandlerFunc(reservationHandler.Create))).Methods(http.MethodPost)
	api.Handle("/reservations/my-reservations", middleware.RequireAuth(http.HandlerFunc(reservationHandler.MyReservations))).Methods(http.MethodGet)
	api.Handle("/reservations/all", middleware.RequireAdmin(http.HandlerFunc(reservationHandler.ListAll))).Methods(http.MethodGet)
	api.Handle("/reservations/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(reservationHandler.Get))).Methods(http.MethodGet)
	api.Handle("/reservations/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(reservationHandler.Update))).Methods(http.MethodPut)
	api.Handle("/reservations/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(reservationHandler.Cancel))).Methods(http.MethodDelete)
	api.Handle("/reservations/{id:[0-9]+}/status", middleware.RequireAdmin(http.HandlerFunc(reservationHandler.SetStatus))).Methods(http.MethodPut)

	// Reviews
	api.HandleFunc("/reviews", reviewHandler.ListApproved).Methods(http.MethodGet)
	api.HandleFunc("/reviews/featured", reviewHandler.Featured).Methods(http.MethodGet)
	api.HandleFunc("/reviews/stats", reviewHandler.Stats).Methods(http.MethodGet)
	api.Handle("/reviews", middleware.RequireAuth(http.HandlerFunc(reviewHandler.Submit))).Methods(http.MethodPost)
	api.Handle("/reviews/my-reviews", middleware.RequireAuth(http.HandlerFunc(reviewHandler.MyReviews))).Methods(http.MethodGet)
	api.Handle("/reviews/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(reviewHandler.Update))).Methods(http.MethodPut)
	api.Handle("/reviews/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(reviewHandler.Delete))).Methods(http.MethodDelete)
	api.Handle("/reviews/{id:[0-9]+}/moderate", middleware.RequireAdmin(http.HandlerFunc(reviewHandler.Moderate))).Methods(http.MethodPatch, http.MethodPut)

	// Admin
	api.Handle("/admin/dashboard", middleware.RequireAdmin(http.HandlerFunc(adminHandler.Dashboard))).Methods(http.MethodGet)
	api.Handle("/admin/users", middleware.RequireAdmin(http.HandlerFunc(adminHandler.Users))).Methods(http.MethodGet)
	api.Handle("/admin/users/{id:[0-9]+}/role", middleware.RequireAdmin(http.HandlerFunc(adminHandler.UpdateUserRole))).Methods(http.MethodPut)
	api.Handle("/admin/orders", middleware.RequireAdmin(http.HandlerFunc(orderHandler.All))).Methods(http.MethodGet)
	api.Handle("/admin/reviews", middleware.RequireAdmin(http.HandlerFunc(reviewHandler.All))).Methods(http.MethodGet)

	// Uploads
	api.Handle("/upload/single", middleware.RequireAdmin(http.HandlerFunc(uploadHandler.Single))).Methods(http.MethodPost)
	api.Handle("/upload/multiple", middleware.RequireAdmin(http.HandlerFunc(uploadHandler.Multiple))).Methods(http.MethodPost)
	api.Handle("/upload/list/{type}", middleware.RequireAdmin(http.HandlerFunc(uploadHandler.List))).Methods(http.MethodGet)
	api.Handle("/upload/{type}/{filename}", middleware.RequireAdmin(http.HandlerFunc(uploadHandler.Delete))).Methods(http.MethodDelete)

	// Uploaded images are served directly.
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.BaseDir()))))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: cfg.ClientOrigin != "*",
	})

	var handler http.Handler = r
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.Authentication(handler)
	handler = corsHandler.Handler(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)

	return handler, cleanup
}
