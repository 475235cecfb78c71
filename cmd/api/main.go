package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pharmacy-storefront/internal/client"
	"pharmacy-storefront/internal/config"
	"pharmacy-storefront/internal/handler"
	"pharmacy-storefront/internal/logger"
	"pharmacy-storefront/internal/repository"
	"pharmacy-storefront/internal/server"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/webhook"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	mpClient := client.NewMercadoPagoClient(&cfg.MercadoPago)

	cartRepo := repository.NewCartRepository()
	productRepo := repository.NewProductRepository()
	neighborhoodRepo := repository.NewNeighborhoodRepository()
	orderRepo := repository.NewOrderRepository()
	webhookEventRepo := repository.NewWebhookEventRepository()

	paymentService := service.NewPaymentService(
		db, mpClient, orderRepo, webhookEventRepo,
		cfg.FrontendURL, cfg.BaseURL, log,
	)
	cartService := service.NewCartService(db, cartRepo, productRepo, log)
	orderService := service.NewOrderService(
		db, cartRepo, orderRepo, neighborhoodRepo, paymentService, log,
	)

	verifier := webhook.NewVerifier(cfg.MercadoPago.WebhookSecret)
	paymentHandler := handler.NewPaymentHandler(paymentService, verifier, log)

	srv := server.NewServer(cartService, orderService, paymentHandler, cfg.JWTSecret, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
