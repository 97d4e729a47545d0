package router

import (
	"time"

	"slotpay/config"
	"slotpay/internal/handler"
	"slotpay/internal/middleware"
	"slotpay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Setup(cfg *config.Config, booking *service.BookingService, payments *service.PaymentService, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	authHandler := handler.NewAuthHandler(cfg)
	availabilityHandler := handler.NewAvailabilityHandler(booking)
	bookingHandler := handler.NewBookingHandler(booking)
	paymentHandler := handler.NewPaymentHandler(payments)
	webhookHandler := handler.NewPaymentWebhookHandler(payments, log)

	operatorMw := middleware.OperatorRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/operator/login", authHandler.OperatorLogin)

		api.GET("/availability", availabilityHandler.Day)

		api.POST("/appointments", bookingHandler.Book)
		api.GET("/appointments/:ref", bookingHandler.Get)

		api.POST("/payments", paymentHandler.Create)
		api.POST("/payments/bulk", paymentHandler.CreateBulk)
		api.GET("/payments/:id/status", paymentHandler.Status)
		api.POST("/payments/webhook", webhookHandler.Handle)
		api.POST("/payments/expire-old", operatorMw, paymentHandler.ExpireOld)
	}

	return r
}
