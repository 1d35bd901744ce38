package main

import (
	"context"
	"log"
	"strings"

	"checkout-service/aws"
	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/kafka"
	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to load config:", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to connect to DB:", err)
	}
	if err := database.DB.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Product{}); err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to migrate models:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to initialize logger:", err)
	}
	defer logger.Sync()

	orderRepo := repository.NewGormOrderRepository(database.DB)
	productRepo := repository.NewGormProductRepository(database.DB)
	gateway := services.NewPortOneClient(cfg.PortOneAPISecret)

	// Event fanout is best-effort; the service runs without either sink.
	var producer services.OrderEventSender
	if cfg.KafkaBrokers != "" {
		p := kafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic, logger)
		defer p.Close()
		producer = p
	}

	var snsClient aws.SNSPublisher
	if cfg.OrderSNSTopicARN != "" {
		awsCfg, err := aws.LoadConfig(context.Background())
		if err != nil {
			logger.Warn("AWS config load failed, SNS publishing disabled", zap.Error(err))
		} else {
			snsClient = aws.NewSNSClient(awsCfg)
		}
	}

	verifier := services.NewVerificationService(
		orderRepo, productRepo, gateway,
		producer, snsClient, cfg.OrderSNSTopicARN,
		logger,
	)
	orderSvc := services.NewOrderService(orderRepo, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Env != "production" {
		r.Use(gin.Logger())
	}
	pc := &controllers.PaymentController{Verifier: verifier, Logger: logger}
	wc := &controllers.WebhookController{Verifier: verifier, Logger: logger}
	oc := &controllers.OrderController{Service: orderSvc, Logger: logger}
	routes.RegisterRoutes(r, pc, wc, oc)

	log.Println("[CheckoutService] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[CheckoutService] ❌ Server failed:", err)
	}
}
