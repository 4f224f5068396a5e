package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/handler"
	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/pkg/config"
	"github.com/sasetin42/RidersBUD-sub003/pkg/logger"
	corsmiddleware "github.com/sasetin42/RidersBUD-sub003/pkg/middleware/cors"
	reqidmiddleware "github.com/sasetin42/RidersBUD-sub003/pkg/middleware/requestid"
)

// Options carries the cross-cutting dependencies of the HTTP surface.
type Options struct {
	Env            string
	APIPrefix      string
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
	BookingLimiter *middleware.RateLimiter
}

// Handlers groups every endpoint handler.
type Handlers struct {
	Auth         *handler.AuthHandler
	Availability *handler.AvailabilityHandler
	Mechanics    *handler.MechanicHandler
	Bookings     *handler.BookingHandler
	Images       *handler.BookingImageHandler
	Exports      *handler.ExportHandler
	Catalog      *handler.CatalogHandler
	Customers    *handler.CustomerHandler
	Orders       *handler.OrderHandler
	Admin        *handler.AdminHandler
	Dashboard    *handler.DashboardHandler
	Realtime     *handler.RealtimeHandler
	Health       *handler.HealthHandler
}

// New builds the gin engine with all routes mounted.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}
	if opts.BookingLimiter == nil {
		opts.BookingLimiter = middleware.NewRateLimiter(0, 1, opts.Logger)
	}

	r := gin.New()
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	r.GET("/ws", middleware.OptionalJWT(opts.Tokens), h.Realtime.Serve)

	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	auth := middleware.JWT(opts.Tokens)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", auth, h.Auth.Me)

	api.GET("/services", h.Catalog.ListServices)
	api.GET("/services/:id", h.Catalog.GetService)
	api.POST("/services", auth, admin, h.Catalog.CreateService)
	api.PUT("/services/:id", auth, admin, h.Catalog.UpdateService)
	api.GET("/parts", h.Catalog.ListParts)
	api.GET("/parts/:id", h.Catalog.GetPart)
	api.POST("/parts", auth, admin, h.Catalog.CreatePart)
	api.PUT("/parts/:id", auth, admin, h.Catalog.UpdatePart)

	api.GET("/availability", h.Availability.Find)
	api.GET("/mechanics/:id/slots", h.Availability.MechanicSlots)

	mechanicSelf := middleware.SelfOr(models.RoleMechanic, models.RoleAdmin)
	api.POST("/mechanics/register", h.Mechanics.Register)
	api.GET("/mechanics", h.Mechanics.List)
	api.GET("/mechanics/:id", h.Mechanics.Get)
	api.PATCH("/mechanics/:id/status", auth, admin, h.Mechanics.SetStatus)
	api.PUT("/mechanics/:id/availability", auth, mechanicSelf, h.Mechanics.UpdateAvailability)
	api.POST("/mechanics/:id/time-off", auth, mechanicSelf, h.Mechanics.AddTimeOff)
	api.DELETE("/mechanics/:id/time-off/:startDate", auth, mechanicSelf, h.Mechanics.RemoveTimeOff)
	api.PUT("/mechanics/:id/specializations", auth, mechanicSelf, h.Mechanics.UpdateSpecializations)

	customerSelf := middleware.SelfOr(models.RoleCustomer, models.RoleAdmin)
	api.POST("/customers/register", h.Customers.Register)
	api.GET("/customers/:id", auth, customerSelf, h.Customers.Get)
	api.POST("/customers/:id/vehicles", auth, customerSelf, h.Customers.AddVehicle)
	api.DELETE("/customers/:id/vehicles/:vehicleId", auth, customerSelf, h.Customers.RemoveVehicle)

	bookings := api.Group("/bookings", auth)
	bookings.POST("", middleware.RequireRoles(models.RoleCustomer, models.RoleAdmin), opts.BookingLimiter.Middleware(), h.Bookings.Create)
	bookings.GET("", h.Bookings.List)
	bookings.GET("/:id", h.Bookings.Get)
	bookings.PATCH("/:id/status", h.Bookings.SetStatus)
	bookings.PATCH("/:id/mechanic", admin, h.Bookings.AssignMechanic)
	bookings.POST("/:id/images", middleware.RequireRoles(models.RoleMechanic, models.RoleAdmin), h.Images.Upload)
	bookings.GET("/:id/images", h.Images.List)

	api.GET("/images/:token", h.Images.Serve)
	api.POST("/exports/bookings", auth, admin, h.Exports.Export)
	api.GET("/exports/:token", h.Exports.Download)

	orders := api.Group("/orders", auth)
	orders.POST("", middleware.RequireRoles(models.RoleCustomer, models.RoleAdmin), h.Orders.Create)
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.PATCH("/:id/status", admin, h.Orders.SetStatus)

	api.GET("/settings", h.Admin.Settings)
	api.GET("/content/banners", middleware.OptionalJWT(opts.Tokens), h.Admin.Banners)
	api.GET("/content/faqs", h.Admin.FAQs)

	back := api.Group("/admin", auth, admin)
	back.GET("/dashboard", h.Dashboard.Admin)
	back.GET("/roles", h.Admin.ListRoles)
	back.POST("/roles", h.Admin.CreateRole)
	back.DELETE("/roles/:id", h.Admin.DeleteRole)
	back.GET("/users", h.Admin.ListAdminUsers)
	back.POST("/users", h.Admin.CreateAdminUser)
	back.PUT("/settings", h.Admin.UpdateSettings)
	back.PUT("/banners", h.Admin.ReplaceBanners)
	back.PUT("/faqs", h.Admin.ReplaceFAQs)
	back.GET("/tasks", h.Admin.ListTasks)
	back.POST("/tasks", h.Admin.CreateTask)
	back.POST("/tasks/:id/complete", h.Admin.CompleteTask)
	back.GET("/stats", h.Health.Stats)

	return r
}
