package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/phillip/event-registration-go/config"
	controllers "github.com/phillip/event-registration-go/controllers"
	middleware "github.com/phillip/event-registration-go/middleware"
	"github.com/phillip/event-registration-go/payments"
)

// Services are the handlers' collaborators, built once in main.
type Services struct {
	Initiator     *payments.Initiator
	Reconciler    *payments.Reconciler
	Query         *payments.Query
	Admins        controllers.AdminRepository
	Registrations controllers.RegistrationLister
	Contact       controllers.ContactSender
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if svc.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// public
	payment := api.Group("/payment")
	{
		payment.POST("", controllers.InitiatePayment(cfg, svc.Initiator))
		payment.POST("/notify", controllers.PaymentNotification(cfg, svc.Reconciler))
		payment.GET("/verify", controllers.VerifyPayment(cfg, svc.Query))
	}

	installments := payment.Group("/installments")
	{
		installments.POST("/create/:registrationId", controllers.CreateInstallments(cfg, svc.Initiator))
		installments.POST("/pay-installment/:installmentId", controllers.PayInstallment(cfg, svc.Initiator))
		installments.GET("/check/:installmentId", controllers.CheckInstallment(cfg, svc.Query))
		installments.GET("/:registrationId", controllers.GetInstallments(cfg, svc.Initiator))
	}

	api.POST("/contact", controllers.SendContact(svc.Contact, svc.Logger))
	api.POST("/admin/login", controllers.AdminLogin(cfg, svc.Admins))

	// protected
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		admin.GET("/registrations", controllers.ListRegistrations(cfg, svc.Registrations))
		admin.GET("/registrations/:id", controllers.GetRegistration(cfg, svc.Query))
	}
}
