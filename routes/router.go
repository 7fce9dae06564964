package routes

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/controllers"
	"github.com/dpefoundation/website/middleware"
	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/storage"
	"github.com/dpefoundation/website/utils"
	"github.com/dpefoundation/website/web"
)

// loginPerMinute caps login attempts per IP independently of the public form budget.
const loginPerMinute = 10

const (
	contactBodyLimit = 1 << 20
	uploadHeadroom   = 1 << 20
	multipartMemory  = 8 << 20
)

// uploadBodyLimit is the largest application body: every slot of the widest variant at the
// per-file limit, plus headroom for text fields and multipart framing.
func uploadBodyLimit(maxMB int) int64 {
	slots := 0
	for _, v := range services.Variants() {
		if len(v.Slots) > slots {
			slots = len(v.Slots)
		}
	}
	return int64(slots)*int64(maxMB)<<20 + uploadHeadroom
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store storage.Store, site *web.Site, auth *services.AdminAuth) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.RegisterValidators(); err != nil {
		utils.Sugar.Warnf("register validators: %v", err)
	}

	r := gin.New()
	r.MaxMultipartMemory = multipartMemory
	r.SetHTMLTemplate(template.Must(web.Templates()))

	// Access log goes to its own rolling file; fall back to the app logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Captcha-Id", "X-Captcha-Answer"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.SecurityHeaders())

	publicPaths := make([]string, 0, len(controllers.PublicPages))
	for p := range controllers.PublicPages {
		publicPaths = append(publicPaths, p)
	}
	r.Use(middleware.PageViewRecorder(db, cfg.Location(), publicPaths...))

	r.Static("/static", "./static")
	if cfg.StorageDriver != "supabase" && !strings.HasPrefix(cfg.StoragePublicBase, "/static/") {
		r.Static(cfg.StoragePublicBase, cfg.StorageLocalDir)
	}

	loc := cfg.Location()
	pageController := controllers.NewPageController(site)
	contactController := controllers.NewContactController(services.NewContactService(db), pageController)
	scholarshipController := controllers.NewScholarshipController(services.NewScholarshipService(db, store, cfg), pageController)
	statsService := services.NewStatsService(db, loc)
	adminController := controllers.NewAdminController(services.NewDashboardService(db, store, loc), statsService, pageController)
	authController := controllers.NewAuthController(auth, pageController)
	statsController := controllers.NewStatsController(statsService)
	heartbeatController := controllers.NewHeartbeatController(services.NewHeartbeatService(db))
	configController := controllers.NewConfigController(site)
	captchaController := controllers.NewCaptchaController()

	formLimit := middleware.RateLimit(cfg.RateLimitPerMinute)
	loginLimit := middleware.RateLimit(loginPerMinute)
	contactBody := middleware.BodyLimit(contactBodyLimit)
	uploadBody := middleware.BodyLimit(uploadBodyLimit(cfg.UploadMaxMB))

	for path := range controllers.PublicPages {
		r.GET(path, pageController.Show)
	}
	r.POST("/contact", formLimit, contactBody, contactController.SubmitForm)
	r.POST("/scholarships/:variant/apply", formLimit, uploadBody, scholarshipController.SubmitForm)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/contact", formLimit, contactBody, contactController.Submit)
	api.POST("/scholarships/:variant", formLimit, uploadBody, scholarshipController.Submit)
	api.GET("/heartbeat", heartbeatController.Latest)
	api.POST("/heartbeat", heartbeatController.Beat)
	api.GET("/site", configController.GetSite)
	api.GET("/variants", configController.GetVariants)
	api.GET("/captcha", captchaController.Generate)

	adminAPI := api.Group("/admin")
	adminAPI.Use(middleware.AdminRequired())
	adminAPI.POST("/login", loginLimit, authController.Login)
	adminAPI.POST("/logout", authController.Logout)
	adminAPI.GET("/overview", adminController.Overview)
	adminAPI.GET("/stats", statsController.GetStats)
	adminAPI.GET("/contacts", adminController.ListContacts)
	adminAPI.GET("/contacts/export.csv", adminController.ExportContacts)
	adminAPI.GET("/scholarships/:variant", adminController.ListScholarships)
	adminAPI.PUT("/scholarships/:variant", adminController.SaveAll)
	adminAPI.GET("/scholarships/:variant/export.csv", adminController.ExportScholarships)
	adminAPI.PATCH("/scholarships/:variant/:id", adminController.UpdateReview)
	adminAPI.GET("/scholarships/:variant/:id/files/:role", adminController.File)

	adminPages := r.Group("/admin")
	adminPages.Use(middleware.AdminRequired())
	adminPages.GET("", adminController.Dashboard)
	adminPages.GET("/login", authController.LoginPage)
	adminPages.POST("/login", loginLimit, authController.LoginForm)
	adminPages.POST("/logout", authController.LogoutForm)
	adminPages.POST("/scholarships/:variant/:id", adminController.UpdateReviewForm)

	// Unknown admin paths still require a session before they can 404
	r.NoRoute(middleware.AdminRequired(), func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		pageController.NotFound(ctx)
	})

	return r
}
