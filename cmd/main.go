package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "genzip/docs"
	"genzip/internal/analytics"
	"genzip/internal/caching"
	"genzip/internal/config"
	"genzip/internal/handlers"
	"genzip/internal/jobs"
	"genzip/internal/jobs/background"
	"genzip/internal/middleware"
	"genzip/internal/models"
	"genzip/internal/repositories"
	"genzip/internal/services"
	"genzip/pkg/database"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:          "genzip",
		Short:        "GenZip interview verification marketplace",
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, mail worker and background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrate() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return database.Migrate(ctx, pool)
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := cacheSvc.Ping(ctx); err != nil {
		log.Printf("WARNING: Redis not reachable at %s: %v", cfg.RedisAddr, err)
	}

	// Object storage
	storage, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		return err
	}
	if err := storage.EnsureBucketExists(ctx); err != nil {
		log.Printf("WARNING: object storage unavailable, uploads will fail: %v", err)
	}

	// Mail queue
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	jobs.RegisterHandlers(mux, jobs.NewMailHandler(jobs.NewMailer(jobs.MailerConfig{
		APIURL:     cfg.MailAPIURL,
		ServiceID:  cfg.MailServiceID,
		TemplateID: cfg.MailTemplateID,
		PublicKey:  cfg.MailPublicKey,
		From:       cfg.MailFrom,
	})))
	if err := worker.Start(mux); err != nil {
		return err
	}
	defer worker.Shutdown()

	// External identity provider keys
	var jwks *keyfunc.JWKS
	if cfg.JWKSURL != "" {
		jwks, err = keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				log.Printf("Failed to refresh JWKS: %v", err)
			},
		})
		if err != nil {
			return err
		}
		defer jwks.EndBackground()
	}

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	companyRepo := repositories.NewCompanyRepository(pool)
	hrRepo := repositories.NewHRRepository(pool)
	agentRepo := repositories.NewFieldAgentRepository(pool)
	agentPaymentRepo := repositories.NewAgentPaymentRepository(pool)
	jobRepo := repositories.NewJobRepository(pool)
	candidateRepo := repositories.NewCandidateRepository(pool)
	interviewerRepo := repositories.NewInterviewerRepository(pool)
	interviewRepo := repositories.NewInterviewRepository(pool)
	creditRepo := repositories.NewCreditRepository(pool)
	subscriptionRepo := repositories.NewSubscriptionRepository(pool)
	enquiryRepo := repositories.NewEnquiryRepository(pool)

	// Create services
	authSvc := services.NewAuthService(cacheSvc, userRepo, cfg.JWTSecret, jwks, cfg.AccessTTL, cfg.RefreshTTL, cfg.BcryptCost)
	notifier := services.NewNotificationService(queue, cfg.PublicURL)
	creditSvc := services.NewCreditService(creditRepo, cacheSvc)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, cfg.Catalog)
	accountSvc := services.NewAccountService(userRepo, companyRepo, hrRepo, authSvc, notifier)
	agentSvc := services.NewAgentService(userRepo, agentRepo, agentPaymentRepo, authSvc, cacheSvc, storage, notifier, cfg.AgentDevOTP, cfg.AgentOTPTTL)
	interviewSvc := services.NewInterviewService(services.InterviewServiceDeps{
		Interviews:    interviewRepo,
		Jobs:          jobRepo,
		Candidates:    candidateRepo,
		Interviewers:  interviewerRepo,
		Companies:     companyRepo,
		HRs:           hrRepo,
		Agents:        agentRepo,
		AgentPayments: agentPaymentRepo,
		Credits:       creditSvc,
		Notifier:      notifier,
		Storage:       storage,
		AgentPayout:   cfg.Catalog.AgentPayout,
	})

	var gateway services.PaymentGateway
	switch cfg.PaymentProvider {
	case "razorpay":
		gateway = services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	default:
		gateway = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	paymentSvc := services.NewPaymentService(gateway, interviewRepo, creditSvc, subscriptionSvc, notifier, cfg.Catalog, cfg.PublicURL)
	enquirySvc := services.NewEnquiryService(enquiryRepo, companyRepo)

	analyticsSvc := analytics.NewAnalyticsService(interviewRepo, creditRepo, subscriptionRepo, hrRepo, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(jobs.NewDashboardRefreshService(analyticsSvc, companyRepo), interviewRepo, subscriptionSvc, cfg.ReservationTTL)
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(accountSvc, authSvc, userRepo)
	agentHandlers := handlers.NewAgentHandlers(agentSvc, interviewSvc)
	adminHandlers := handlers.NewAdminHandlers(accountSvc, analyticsSvc, enquirySvc, subscriptionSvc)
	jobHandlers := handlers.NewJobHandlers(services.NewJobService(jobRepo))
	candidateHandlers := handlers.NewCandidateHandlers(services.NewCandidateService(candidateRepo))
	interviewerHandlers := handlers.NewInterviewerHandlers(services.NewInterviewerService(interviewerRepo, jobRepo))
	interviewHandlers := handlers.NewInterviewHandlers(interviewSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc, creditSvc)
	receiptHandlers := handlers.NewReceiptHandlers(creditSvc, accountSvc)
	webhookHandlers := handlers.NewWebhookHandlers(paymentSvc)
	publicHandlers := handlers.NewPublicHandlers(interviewSvc, enquirySvc, cacheSvc, cfg.LocationRateLimit, cfg.LocationRateWindow)
	healthHandlers := handlers.NewHealthHandlers(version, map[string]handlers.HealthCheck{
		"database": pool.Ping,
		"redis":    cacheSvc.Ping,
		"storage":  storage.Ping,
	}, "database", "redis")

	e := newServer(cfg, routes{
		auth:         authHandlers,
		agent:        agentHandlers,
		admin:        adminHandlers,
		job:          jobHandlers,
		candidate:    candidateHandlers,
		interviewer:  interviewerHandlers,
		interview:    interviewHandlers,
		payment:      paymentHandlers,
		receipt:      receiptHandlers,
		webhook:      webhookHandlers,
		public:       publicHandlers,
		health:       healthHandlers,
		jobStatus:    scheduler.GetJobStatus,
		authService:  authSvc,
		userRepo:     userRepo,
		agentService: agentSvc,
	})

	go func() {
		log.Printf("GenZip server v%s starting on %s (payments: %s)", version, cfg.HTTPAddress(), gateway.Name())
		if err := e.Start(cfg.HTTPAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

type routes struct {
	auth        *handlers.AuthHandlers
	agent       *handlers.AgentHandlers
	admin       *handlers.AdminHandlers
	job         *handlers.JobHandlers
	candidate   *handlers.CandidateHandlers
	interviewer *handlers.InterviewerHandlers
	interview   *handlers.InterviewHandlers
	payment     *handlers.PaymentHandlers
	receipt     *handlers.ReceiptHandlers
	webhook     *handlers.WebhookHandlers
	public      *handlers.PublicHandlers
	health      *handlers.HealthHandlers
	jobStatus   func() map[string]interface{}

	authService  services.AuthService
	userRepo     repositories.UserRepository
	agentService services.AgentService
}

func newServer(cfg *config.Config, r routes) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware(version)
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", r.health.HealthCheck)
	e.GET("/health/ready", r.health.ReadinessCheck)
	e.GET("/health/live", r.health.LivenessCheck)
	e.GET("/health/jobs", func(c echo.Context) error {
		return c.JSON(http.StatusOK, r.jobStatus())
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Public routes
	v1.POST("/auth/signup", r.auth.Signup)
	v1.POST("/auth/login", r.auth.Login)
	v1.POST("/auth/refresh", r.auth.Refresh)
	v1.POST("/agents/otp", r.agent.RequestOTP)
	v1.POST("/agents/signup", r.agent.Signup)
	v1.POST("/agents/login", r.agent.Login)
	v1.POST("/agents/password/reset", r.agent.ResetPassword)
	v1.POST("/public/interviews/:id/location", r.public.SubmitLocation)
	v1.POST("/public/enquiries", r.public.CreateEnquiry)
	v1.GET("/plans", r.admin.ListPlans)
	v1.POST("/webhooks/stripe", r.webhook.StripeWebhook)
	v1.POST("/webhooks/razorpay", r.webhook.RazorpayWebhook)

	// Authenticated routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(r.authService)))
	protected.Use(middleware.Identity(r.authService, r.userRepo))

	rbac := middleware.NewRBACMiddleware(r.agentService)

	protected.GET("/me", r.auth.Me)
	protected.POST("/auth/logout", r.auth.Logout)
	protected.POST("/auth/password", r.auth.ChangePassword)

	// HR and admin workspace
	staff := rbac.RequireRole(models.RoleAdmin, models.RoleHR)
	protected.GET("/hr/profile", r.admin.CurrentHR, rbac.RequireRole(models.RoleHR))

	protected.GET("/jobs", r.job.ListJobs, staff)
	protected.POST("/jobs", r.job.CreateJob, staff)
	protected.GET("/jobs/:id", r.job.GetJob, staff)
	protected.PUT("/jobs/:id", r.job.UpdateJob, staff)
	protected.DELETE("/jobs/:id", r.job.DeleteJob, staff)

	protected.GET("/candidates", r.candidate.ListCandidates, staff)
	protected.POST("/candidates", r.candidate.CreateCandidate, staff)
	protected.GET("/candidates/:id", r.candidate.GetCandidate, staff)
	protected.PUT("/candidates/:id", r.candidate.UpdateCandidate, staff)
	protected.DELETE("/candidates/:id", r.candidate.DeleteCandidate, staff)

	protected.GET("/interviewers", r.interviewer.ListInterviewers, staff)
	protected.POST("/interviewers", r.interviewer.CreateInterviewer, staff)
	protected.GET("/interviewers/:id", r.interviewer.GetInterviewer, staff)
	protected.PUT("/interviewers/:id", r.interviewer.UpdateInterviewer, staff)
	protected.DELETE("/interviewers/:id", r.interviewer.DeleteInterviewer, staff)

	protected.GET("/interviews", r.interview.ListInterviews, staff)
	protected.POST("/interviews", r.interview.ScheduleInterview, staff)
	protected.GET("/interviews/:id", r.interview.GetInterview, staff)
	protected.PUT("/interviews/:id", r.interview.UpdateInterview, staff)
	protected.DELETE("/interviews/:id", r.interview.DeleteInterview, staff)
	protected.POST("/interviews/:id/cancel", r.interview.CancelInterview, staff)
	protected.POST("/interviews/:id/pay-with-credit", r.interview.PayWithCredit, staff)

	protected.GET("/credits", r.payment.Credits, staff)
	protected.POST("/payments/checkout-session", r.payment.CreateCheckoutSession, staff)
	protected.POST("/payments/subscription-session", r.payment.CreateSubscriptionSession, staff)
	protected.POST("/payments/confirm", r.payment.ConfirmPayment, staff)

	// Admin only
	admin := protected.Group("/admin", rbac.RequireRole(models.RoleAdmin))
	admin.GET("/dashboard", r.admin.Dashboard)
	admin.GET("/hrs", r.admin.ListHRs)
	admin.POST("/hrs", r.admin.CreateHR)
	admin.POST("/hrs/:id/activate", r.admin.ActivateHR)
	admin.POST("/hrs/:id/deactivate", r.admin.DeactivateHR)
	admin.GET("/settings", r.admin.GetSettings)
	admin.PUT("/settings", r.admin.UpdateSettings)
	admin.GET("/enquiries", r.admin.ListEnquiries)
	admin.GET("/subscriptions", r.admin.ListSubscriptions)
	admin.GET("/payments", r.payment.PaymentHistory)
	admin.GET("/payments/:id/receipt", r.receipt.DownloadReceipt)

	// Field agent workspace
	agent := protected.Group("/agent", rbac.RequireAgent())
	agent.GET("/profile", r.agent.Profile)
	agent.PUT("/profile", r.agent.UpdateProfile)
	agent.GET("/payments", r.agent.Payments)
	agent.GET("/interviews/available", r.agent.Available)
	agent.GET("/interviews/current", r.agent.Current)
	agent.GET("/interviews/completed", r.agent.Completed)
	agent.GET("/interviews/transferred", r.agent.Transferred)
	agent.GET("/interviews/:id", r.agent.GetInterview)
	agent.POST("/interviews/:id/reserve", r.agent.Reserve)
	agent.POST("/interviews/:id/decline", r.agent.Decline)
	agent.POST("/interviews/:id/accept", r.agent.Accept)
	agent.POST("/interviews/:id/transfer", r.agent.Transfer)
	agent.POST("/interviews/:id/start", r.agent.StartTravel)
	agent.POST("/interviews/:id/candidate-photo", r.agent.UploadCandidatePhoto)
	agent.POST("/interviews/:id/finish", r.agent.Finish)
	agent.POST("/interviews/:id/video", r.agent.SubmitVideo)

	return e
}
