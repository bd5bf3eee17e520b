package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"staybook-backend/config"
	"staybook-backend/controllers"
	"staybook-backend/middleware"
	"staybook-backend/models"
	"staybook-backend/routes"
	"staybook-backend/services"
	"staybook-backend/utils"
	"staybook-backend/workers"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env not found or couldn't load it; continuing with environment variables")
	}

	if lvl, err := logrus.ParseLevel(utils.EnvOrDefault("LOG_LEVEL", "info")); err == nil {
		logrus.SetLevel(lvl)
	}

	if os.Getenv("AUTH_TOKEN_SECRET") == "" {
		logrus.Fatal("AUTH_TOKEN_SECRET environment variable is not set; cannot verify identity tokens")
	}
	if os.Getenv("STRIPE_SECRET_KEY") == "" {
		logrus.Warn("STRIPE_SECRET_KEY not set; checkout session creation will fail")
	}
	if os.Getenv("STRIPE_WEBHOOK_SECRET") == "" {
		logrus.Warn("STRIPE_WEBHOOK_SECRET not set; webhook signatures will not verify")
	}

	if err := config.ConnectDatabase(); err != nil {
		logrus.Fatalf("database connect failed: %v", err)
	}
	db := config.DB

	// Services
	pricing := services.NewPricingCalculatorFromEnv()
	checkout := services.NewStripeCheckoutFromEnv()
	availabilitySvc := services.NewAvailabilityService(db)
	bookingSvc := services.NewBookingService(db, pricing, checkout)
	invoiceSvc := services.NewInvoiceService(db)
	bookingSvc.NotifyPaid = func(b *models.Booking) error {
		pdf, err := invoiceSvc.Generate(b.ID)
		if err != nil {
			return err
		}
		return utils.SendInvoiceEmail(b, pdf)
	}
	hotelSvc := services.NewHotelService(db)
	roomSvc := services.NewRoomService(db)

	// Controllers
	bookingController := controllers.NewBookingController(bookingSvc, availabilitySvc, invoiceSvc)
	roomController := controllers.NewRoomController(roomSvc)
	hotelController := controllers.NewHotelController(hotelSvc)
	webhookController := controllers.NewWebhookController(bookingSvc)

	router := routes.SetupRouter(
		bookingController,
		roomController,
		hotelController,
		webhookController,
		middleware.Auth(db),
	)

	// Background expiry of abandoned unpaid bookings
	workerCtx, stopWorker := context.WithCancel(context.Background())
	expiry := workers.NewExpiryWorker(
		bookingSvc,
		time.Duration(utils.EnvInt64("BOOKING_EXPIRY_SWEEP_SECONDS", 60))*time.Second,
		time.Duration(utils.EnvInt64("BOOKING_EXPIRY_MINUTES", 30))*time.Minute,
	)
	go expiry.Start(workerCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.Infof("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt, then shut down with a timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logrus.Info("shutdown signal received, shutting down server")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}

	logrus.Info("server stopped gracefully")
}
