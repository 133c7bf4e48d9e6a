package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/payment"
	infraRepo "github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/infra/storage"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	ucArrival "github.com/BruksfildServices01/salon-booking/internal/usecase/arrival"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
	ucSales "github.com/BruksfildServices01/salon-booking/internal/usecase/sales"
)

// Deps are the process-wide singletons the API is built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger

	Cache    cache.AvailabilityCache
	Storage  storage.Storage
	Payments payment.Gateway
	Audit    ucBooking.Auditor
	Notify   ucBooking.Notifier

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// EmailOK validates the domain of sign-up emails.
	EmailOK func(string) bool
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORSMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	// ======================================================
	// INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(d.DB)
	arrivalRepo := infraRepo.NewArrivalGormRepository(d.DB)

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo, d.Cache)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		d.Cache,
		d.Audit,
		d.Notify,
		d.Payments,
		d.Config.PaymentCurrency,
		d.Metrics,
		d.Log,
	)

	updateStatusUC := ucBooking.NewUpdateStatus(bookingRepo, d.Cache, d.Audit, d.Notify)
	updatePaymentUC := ucBooking.NewUpdatePayment(bookingRepo, d.Audit)
	cancelByReferenceUC := ucBooking.NewCancelByReference(bookingRepo, d.Cache, d.Audit, d.Notify)
	confirmPaymentUC := ucBooking.NewConfirmPayment(bookingRepo, d.Payments, d.Audit, d.Log)

	recordArrivalUC := ucArrival.NewRecordArrival(arrivalRepo, bookingRepo, d.Audit, d.Config.ArrivalGraceMinutes)
	listArrivalsUC := ucArrival.NewListArrivals(arrivalRepo)

	salesSummaryUC := ucSales.NewGetSummary(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Config, d.EmailOK)
	meHandler := handlers.NewMeHandler(d.DB)
	shopHandler := handlers.NewShopHandler(d.DB, d.Cache, d.Storage, d.Audit)
	workerHandler := handlers.NewWorkerHandler(d.DB, d.Cache, d.Storage, d.Audit)
	serviceHandler := handlers.NewServiceHandler(d.DB, d.Audit)
	clientHandler := handlers.NewClientHandler(d.DB, d.Audit)

	bookingHandler := handlers.NewBookingHandler(
		d.DB,
		bookingRepo,
		availabilityUC,
		createBookingUC,
		updateStatusUC,
		updatePaymentUC,
	)

	arrivalHandler := handlers.NewArrivalHandler(recordArrivalUC, listArrivalsUC)
	salesHandler := handlers.NewSalesHandler(salesSummaryUC, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	publicHandler := handlers.NewPublicHandler(
		d.DB,
		bookingRepo,
		availabilityUC,
		createBookingUC,
		cancelByReferenceUC,
		confirmPaymentUC,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		limiter := middleware.NewRateLimiter(d.Config.PublicRateLimit, d.Config.PublicRateBurst)

		publicAPI := api.Group("/public")
		publicAPI.Use(limiter.Middleware(d.Log))
		{
			publicAPI.GET("/shops/:slug", publicHandler.Shop)
			publicAPI.GET("/shops/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/shops/:slug/bookings", publicHandler.CreateBooking)

			publicAPI.GET("/bookings/:reference", publicHandler.GetBooking)
			publicAPI.POST("/bookings/:reference/cancel", publicHandler.CancelBooking)
		}

		// Provider callbacks come from a few fixed IPs; keep them out of
		// the client rate limit.
		api.POST("/public/payments/webhook", publicHandler.PaymentWebhook)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		me := api.Group("/me")
		me.Use(middleware.AuthMiddleware(d.Config.JWTSecret))

		// Writes go through owner; staff accounts are read-only.
		owner := me.Group("")
		owner.Use(middleware.RequireOwner())
		{
			me.GET("", meHandler.GetMe)
			owner.POST("/staff", authHandler.CreateStaff)

			// ------------------------------
			// SHOPS
			// ------------------------------
			me.GET("/shops", shopHandler.List)
			owner.POST("/shops", shopHandler.Create)
			me.GET("/shops/:id", shopHandler.Get)
			owner.PATCH("/shops/:id", shopHandler.Update)
			owner.POST("/shops/:id/logo", shopHandler.UploadLogo)
			owner.PUT("/shops/:id/schedules", shopHandler.ReplaceSchedules)
			me.GET("/shops/:id/breaks", shopHandler.ListBreaks)
			owner.POST("/shops/:id/breaks", shopHandler.CreateBreak)
			owner.DELETE("/shops/:id/breaks/:break_id", shopHandler.DeleteBreak)

			// ------------------------------
			// WORKERS
			// ------------------------------
			me.GET("/workers", workerHandler.List)
			owner.POST("/workers", workerHandler.Create)
			me.GET("/workers/:id", workerHandler.Get)
			owner.PATCH("/workers/:id", workerHandler.Update)
			owner.PUT("/workers/:id/shop", workerHandler.Assign)
			owner.DELETE("/workers/:id/shop", workerHandler.Unassign)
			owner.PUT("/workers/:id/services", workerHandler.SetServices)
			owner.POST("/workers/:id/avatar", workerHandler.UploadAvatar)

			// ------------------------------
			// ARRIVALS
			// ------------------------------
			owner.POST("/workers/:id/arrivals", arrivalHandler.Record)
			me.GET("/arrivals", arrivalHandler.List)

			// ------------------------------
			// SERVICES
			// ------------------------------
			me.GET("/services", serviceHandler.List)
			owner.POST("/services", serviceHandler.Create)
			owner.PATCH("/services/:id", serviceHandler.Update)

			// ------------------------------
			// CLIENTS
			// ------------------------------
			me.GET("/clients", clientHandler.List)
			owner.POST("/clients", clientHandler.Create)
			me.GET("/clients/:id", clientHandler.Get)
			owner.PATCH("/clients/:id", clientHandler.Update)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			me.GET("/availability", bookingHandler.Availability)
			owner.POST("/bookings", bookingHandler.Create)
			me.GET("/bookings", bookingHandler.ListByDate)
			me.GET("/bookings/month", bookingHandler.ListByMonth)
			me.GET("/bookings/:id", bookingHandler.Get)
			owner.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
			owner.PATCH("/bookings/:id/payment", bookingHandler.UpdatePayment)
			owner.PATCH("/bookings/:id/complete", bookingHandler.Complete)
			owner.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)

			// ------------------------------
			// REPORTS
			// ------------------------------
			me.GET("/sales/summary", salesHandler.Summary)
			me.GET("/sales/export", salesHandler.Export)
			me.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
