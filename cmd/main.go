package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approveReservationHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/approve_reservation"
	costRulesHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/cost_rules"
	createReservationHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/create_reservation"
	estimateCostHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/estimate_cost"
	getAvailabilityHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/get_availability"
	getReservationHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/get_reservation"
	healthHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/list_reservations"
	reservationStatusHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/reservation_status"
	skillGatesHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/skill_gates"
	updateReservationHandler "github.com/m04kA/makerspace-reservations/internal/api/handlers/update_reservation"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/config"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	costBreakdownRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/costbreakdown"
	costRuleRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/costrule"
	reservationRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/reservation"
	skillGateRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/skillgate"
	skillPrereqRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/skillprereq"
	skillVerificationRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/skillverification"
	certificationClient "github.com/m04kA/makerspace-reservations/internal/integrations/certification"
	equipmentRegistryClient "github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/notifications"
	userServiceClient "github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
	"github.com/m04kA/makerspace-reservations/internal/jobs"
	"github.com/m04kA/makerspace-reservations/internal/scheduler"
	conflictsService "github.com/m04kA/makerspace-reservations/internal/service/conflicts"
	costRulesService "github.com/m04kA/makerspace-reservations/internal/service/costrules"
	pricingService "github.com/m04kA/makerspace-reservations/internal/service/pricing"
	reservationsService "github.com/m04kA/makerspace-reservations/internal/service/reservations"
	skillGatesService "github.com/m04kA/makerspace-reservations/internal/service/skillgates"
	createReservationUC "github.com/m04kA/makerspace-reservations/internal/usecase/create_reservation"
	estimateCostUC "github.com/m04kA/makerspace-reservations/internal/usecase/estimate_cost"
	getAvailabilityUC "github.com/m04kA/makerspace-reservations/internal/usecase/get_availability"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/metrics"
	"github.com/m04kA/makerspace-reservations/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.NewWithFormat(cfg.Logs.File, cfg.Logs.Level, cfg.Logs.Format)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting makerspace-reservations...")
	log.Info("Configuration loaded from config.toml")

	// Метрики. При выключенных метриках collector остается nil,
	// dbmetrics и middleware в этом случае ничего не пишут
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	breakdownRepository := costBreakdownRepo.NewRepository(wrappedDB)
	verificationRepository := skillVerificationRepo.NewRepository(wrappedDB)
	costRuleRepository := costRuleRepo.NewRepository(wrappedDB)
	skillGateRepository := skillGateRepo.NewRepository(wrappedDB)
	prerequisiteRepository := skillPrereqRepo.NewRepository(wrappedDB)

	// Интеграционные клиенты
	equipmentClient := equipmentRegistryClient.NewClient(
		cfg.EquipmentRegistry.URL,
		time.Duration(cfg.EquipmentRegistry.Timeout)*time.Second,
		log,
	)
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	certClient := certificationClient.NewClient(
		cfg.CertificationService.URL,
		time.Duration(cfg.CertificationService.Timeout)*time.Second,
	)
	log.Info("Integration clients initialized (EquipmentRegistry=%s, UserService=%s, CertificationService=%s)",
		cfg.EquipmentRegistry.URL, cfg.UserService.URL, cfg.CertificationService.URL)

	// Уведомления: SendGrid, если настроен ключ, иначе только в лог
	var sender notifications.Sender = notifications.NewLogSender(log)
	if cfg.Notifications.Enabled && cfg.Notifications.SendGridAPIKey != "" {
		sender = notifications.NewSendGridSender(
			cfg.Notifications.SendGridAPIKey,
			cfg.Notifications.FromEmail,
			cfg.Notifications.FromName,
		)
		log.Info("SendGrid notifications enabled (from=%s)", cfg.Notifications.FromEmail)
	}
	dispatcher := notifications.NewDispatcher(
		reservationRepository,
		sender,
		time.Duration(cfg.Notifications.Timeout)*time.Second,
		log,
	)

	makerspaceLocation, err := cfg.Reservations.Location()
	if err != nil {
		log.Fatal("Failed to load makerspace timezone: %v", err)
	}

	policy := domain.EmergencyPolicy{
		AllowConflictBypass:  cfg.Reservations.AllowConflictBypass,
		AllowSkillGateBypass: cfg.Reservations.AllowSkillGateBypass,
	}

	// Сервисы
	conflictSvc := conflictsService.NewService(reservationRepository, log)
	pricingSvc := pricingService.NewService(costRuleRepository, makerspaceLocation, log)
	verifier := skillGatesService.NewVerifier(skillGateRepository, prerequisiteRepository, certClient, log)
	skillGateSvc := skillGatesService.NewService(skillGateRepository, prerequisiteRepository, txMgr, log)
	costRuleSvc := costRulesService.NewService(costRuleRepository, log)
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		breakdownRepository,
		verificationRepository,
		conflictSvc,
		pricingSvc,
		equipmentClient,
		userClient,
		verifier,
		dispatcher,
		txMgr,
		reservationsService.Settings{
			Policy:           policy,
			MaxDurationHours: cfg.Reservations.MaxDurationHours,
		},
		log,
	)

	// Use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		breakdownRepository,
		verificationRepository,
		equipmentClient,
		userClient,
		conflictSvc,
		verifier,
		pricingSvc,
		dispatcher,
		metricsCollector,
		txMgr,
		createReservationUC.Settings{
			AutoApprovalThreshold:    cfg.Reservations.AutoApprovalThreshold,
			MaxDurationHours:         cfg.Reservations.MaxDurationHours,
			MaxRecurrenceOccurrences: cfg.Reservations.MaxRecurrenceOccurrences,
			Policy:                   policy,
		},
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		equipmentClient,
		userClient,
		conflictSvc,
		verifier,
		getAvailabilityUC.Settings{
			SlotMinutes:         cfg.Reservations.SlotMinutes,
			MaxAvailabilityDays: cfg.Reservations.MaxAvailabilityDays,
		},
		log,
	)
	estimateCostUseCase := estimateCostUC.NewUseCase(
		equipmentClient,
		userClient,
		verifier,
		pricingSvc,
		cfg.Reservations.AutoApprovalThreshold,
		log,
	)

	// Фоновые задачи
	jobScheduler := scheduler.New(log)
	if cfg.Jobs.Enabled {
		expirer := jobs.NewPendingExpirer(
			reservationRepository,
			reservationSvc,
			time.Duration(cfg.Jobs.ExpirePendingGraceMinutes)*time.Minute,
			log,
		)
		if err := jobScheduler.Register("expire_pending", cfg.Jobs.ExpirePendingSchedule, expirer); err != nil {
			log.Fatal("Failed to register jobs: %v", err)
		}
		jobScheduler.Start()
	}

	// Handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationSvc, log)
	updateReservation := updateReservationHandler.NewHandler(reservationSvc, log)
	approveReservation := approveReservationHandler.NewHandler(reservationSvc, log)
	reservationStatus := reservationStatusHandler.NewHandler(reservationSvc, log)
	costRules := costRulesHandler.NewHandler(costRuleSvc, log)
	skillGates := skillGatesHandler.NewHandler(skillGateSvc, log)
	estimateCost := estimateCostHandler.NewHandler(estimateCostUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	health := healthHandler.NewHandler(db, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recovery(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (JWT bearer, права по ролям)
	// ============================================================

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log))

	acl := middleware.DefaultPolicy()

	// --- Бронирования ---
	api.Handle("/reservations", acl.Guard(middleware.CapReserve, log, createReservation.Handle)).Methods(http.MethodPost)
	api.Handle("/reservations", acl.Guard(middleware.CapViewReservations, log, listReservations.Handle)).Methods(http.MethodGet)
	api.Handle("/reservations/{id}", acl.Guard(middleware.CapViewReservations, log, getReservation.Handle)).Methods(http.MethodGet)
	api.Handle("/reservations/{id}", acl.Guard(middleware.CapManageOwn, log, updateReservation.Handle)).Methods(http.MethodPut)
	api.Handle("/reservations/{id}/approve", acl.Guard(middleware.CapApprove, log, approveReservation.Handle)).Methods(http.MethodPost)
	api.Handle("/reservations/{id}/activate", acl.Guard(middleware.CapOperate, log, reservationStatus.HandleActivate)).Methods(http.MethodPost)
	api.Handle("/reservations/{id}/complete", acl.Guard(middleware.CapOperate, log, reservationStatus.HandleComplete)).Methods(http.MethodPost)
	api.Handle("/reservations/{id}/no-show", acl.Guard(middleware.CapOperate, log, reservationStatus.HandleNoShow)).Methods(http.MethodPost)
	api.Handle("/reservations/{id}/cancel", acl.Guard(middleware.CapManageOwn, log, reservationStatus.HandleCancel)).Methods(http.MethodPost)

	// --- Правила стоимости и skill gates ---
	api.Handle("/cost-rules", acl.Guard(middleware.CapManageRules, log, costRules.HandleCreate)).Methods(http.MethodPost)
	api.Handle("/cost-rules", acl.Guard(middleware.CapViewRules, log, costRules.HandleList)).Methods(http.MethodGet)
	api.Handle("/skill-gates", acl.Guard(middleware.CapManageRules, log, skillGates.HandleCreate)).Methods(http.MethodPost)
	api.Handle("/skill-gates", acl.Guard(middleware.CapViewRules, log, skillGates.HandleList)).Methods(http.MethodGet)
	api.Handle("/skills/{skillId}/prerequisites", acl.Guard(middleware.CapManageRules, log, skillGates.HandleAddPrerequisite)).Methods(http.MethodPost)

	// --- Расчеты без сохранения ---
	api.Handle("/cost-estimate", acl.Guard(middleware.CapEstimate, log, estimateCost.Handle)).Methods(http.MethodPost)
	api.Handle("/availability", acl.Guard(middleware.CapAvailability, log, getAvailability.Handle)).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.Server.AllowedOrigins)(r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	jobScheduler.Stop(shutdownCtx)

	// Дожидаемся отправки уведомлений, запущенных до остановки
	dispatcher.Wait()

	log.Info("Server stopped gracefully")
}
