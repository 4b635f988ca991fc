package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appointmenthandler "github.com/doctora/clinic-api/internal/handler/appointment"
	authhandler "github.com/doctora/clinic-api/internal/handler/auth"
	availabilityhandler "github.com/doctora/clinic-api/internal/handler/availability"
	doctorhandler "github.com/doctora/clinic-api/internal/handler/doctor"
	healthhandler "github.com/doctora/clinic-api/internal/handler/health"
	specialtyhandler "github.com/doctora/clinic-api/internal/handler/specialty"
	userhandler "github.com/doctora/clinic-api/internal/handler/user"
	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/model"
)

type Handlers struct {
	Health       *healthhandler.Handler
	Auth         *authhandler.Handler
	User         *userhandler.Handler
	Doctor       *doctorhandler.Handler
	Specialty    *specialtyhandler.Handler
	Availability *availabilityhandler.Handler
	Appointment  *appointmenthandler.Handler
}

type Config struct {
	RateLimit      middleware.RateLimiterConfig
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	MetricsPrefix  string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	r := &Router{
		engine:   gin.New(),
		auth:     auth,
		handlers: handlers,
		metrics:  newRouterMetrics(cfg.MetricsPrefix),
	}

	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.CORS(cfg.CORS),
		middleware.NewRateLimiter(cfg.RateLimit).RateLimit(),
	)

	return r
}

func (r *Router) Setup() {
	r.setupHealth()
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupPublicRoutes(api)
	r.setupProtectedRoutes(api)
}

func (r *Router) setupHealth() {
	h := r.handlers.Health
	health := r.engine.Group("/health")
	{
		health.GET("", h.Health)
		health.GET("/ping", h.Ping)
		health.GET("/live", h.Live)
		health.GET("/ready", h.Ready)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", r.handlers.Auth.Register)
		auth.POST("/login", r.handlers.Auth.Login)
	}

	doctors := rg.Group("/doctors")
	{
		doctors.GET("", r.handlers.Doctor.List)
		doctors.GET("/stats", r.handlers.Doctor.Stats)
		doctors.GET("/smart-select", r.handlers.Doctor.SmartSelect)
		doctors.GET("/specialty/:id", r.handlers.Doctor.BySpecialty)
		doctors.GET("/:id", r.handlers.Doctor.Get)
		doctors.GET("/:id/availability", r.handlers.Availability.ByDoctor)
	}

	specialties := rg.Group("/specialties")
	{
		specialties.GET("", r.handlers.Specialty.List)
		specialties.GET("/with-doctor-count", r.handlers.Specialty.ListWithDoctorCount)
		specialties.GET("/search", r.handlers.Specialty.Search)
		specialties.GET("/:id", r.handlers.Specialty.Get)
	}

	rg.GET("/appointments/doctor/:id/booked-slots", r.handlers.Appointment.BookedSlots)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	protected := rg.Group("")
	protected.Use(r.auth.Authenticate())

	users := protected.Group("/users")
	{
		users.GET("/me", r.handlers.User.GetProfile)
		users.PUT("/me", r.handlers.User.UpdateProfile)
	}

	patient := protected.Group("", r.auth.RequireRole(string(model.RolePatient), string(model.RoleAdmin)))
	{
		patient.POST("/appointments", r.handlers.Appointment.Create)
		patient.POST("/appointments/with-patient-info", r.handlers.Appointment.CreateWithPatientInfo)
		patient.GET("/appointments/my", r.handlers.Appointment.My)
	}

	protected.PUT("/appointments/:id/cancel", r.handlers.Appointment.Cancel)
	protected.GET("/appointments/:id", r.handlers.Appointment.Get)
	protected.GET("/appointments/:id/booking-info", r.handlers.Appointment.GetBookingInfo)

	doctor := protected.Group("", r.auth.RequireRole(string(model.RoleDoctor)))
	{
		doctor.GET("/doctors/me", r.handlers.Doctor.MyProfile)
		doctor.PUT("/doctors/me", r.handlers.Doctor.UpdateMyProfile)
		doctor.POST("/availability", r.handlers.Availability.Add)
		doctor.PUT("/availability/:id", r.handlers.Availability.Update)
		doctor.DELETE("/availability/:id", r.handlers.Availability.Delete)
		doctor.GET("/availability/my", r.handlers.Availability.My)
		doctor.PUT("/appointments/:id/confirm", r.handlers.Appointment.Confirm)
		doctor.GET("/appointments/schedule", r.handlers.Appointment.MySchedule)
	}

	admin := protected.Group("/admin", r.auth.RequireRole(string(model.RoleAdmin)))
	{
		admin.GET("/users", r.handlers.User.List)
		admin.GET("/dashboard", r.handlers.Doctor.Stats)
		admin.POST("/doctors", r.handlers.Doctor.Create)
		admin.PUT("/doctors/:id", r.handlers.Doctor.Update)
		admin.DELETE("/doctors/:id", r.handlers.Doctor.Delete)
		admin.PATCH("/doctors/:id/status", r.handlers.Doctor.SetActive)
		admin.POST("/specialties", r.handlers.Specialty.Create)
		admin.PUT("/specialties/:id", r.handlers.Specialty.Update)
		admin.DELETE("/specialties/:id", r.handlers.Specialty.Delete)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
