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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	checkAvailabilityHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/check_availability"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_available_slots"
	getCustomerReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_customer_reservations"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getResourceReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_resource_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	catalogRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/events"
	availabilityService "github.com/m04kA/SMC-ReservationService/internal/service/availability"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	checkAvailabilityUC "github.com/m04kA/SMC-ReservationService/internal/usecase/check_availability"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// reservationStore хранилище бронирований: запись, занятость и блокировки ресурсов
type reservationStore interface {
	reservationsService.ReservationRepository
	reservationsService.ResourceLocker
	availabilityService.OccupancyRepository
}

// catalogStore справочники ресурсов, услуг и расписаний
type catalogStore interface {
	availabilityService.ResourceRepository
	getAvailableSlotsUC.CatalogRepository
	checkAvailabilityUC.CatalogRepository
	reservationsService.CatalogRepository
}

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Reservation.Location()
	if err != nil {
		log.Fatal("Invalid reservation timezone: %v", err)
	}
	machine := cfg.Reservation.StatusMachine.Machine()

	// Инициализируем метрики (если включены)
	// Интерфейсы остаются nil при выключенных метриках
	var (
		metricsCollector    *metrics.Metrics
		dbRecorder          dbmetrics.Recorder
		availabilityMetrics availabilityService.MetricsRecorder
		lifecycleMetrics    reservationsService.MetricsRecorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbRecorder = metricsCollector
		availabilityMetrics = metricsCollector
		lifecycleMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	var (
		reservations reservationStore
		catalog      catalogStore
		txMgr        reservationsService.TransactionManager
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		if cfg.Database.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.Database.SeedFile); err != nil {
				log.Fatal("Failed to load seed file: %v", err)
			}
			log.Info("Catalog seeded from %s", cfg.Database.SeedFile)
		}
		reservations, catalog, txMgr = store, store, store
		log.Warn("Using in-memory storage, data is lost on restart")

	default:
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

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		wrappedDB := dbmetrics.WrapWithDefault(db, dbRecorder, cfg.Metrics.ServiceName, stopMetricsCh)
		if dbRecorder != nil {
			log.Info("Database metrics collection started")
		}

		reservations = reservationRepo.NewRepository(wrappedDB)
		catalog = catalogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(catalog, reservations, availabilityMetrics, log)

	reservationSvc := reservationsService.NewService(
		reservations,
		catalog,
		availabilitySvc,
		reservations,
		txMgr,
		lifecycleMetrics,
		log,
		reservationsService.Options{
			Machine:                 machine,
			CancelledStatus:         cfg.Reservation.CancelledStatus,
			ConfirmedStatus:         cfg.Reservation.ConfirmedStatus,
			CancellationNoticeHours: cfg.Reservation.CancellationNoticeHours,
			DefaultBufferMinutes:    cfg.Reservation.DefaultBufferMinutes,
			Location:                location,
		},
	)

	// Публикация событий жизненного цикла (если включена)
	if cfg.Events.Enabled {
		publisher, err := events.Connect(
			cfg.Events.URL,
			cfg.Events.SubjectPrefix,
			time.Duration(cfg.Events.Timeout)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()

		reservationSvc.RegisterHook(publisher)
		log.Info("Lifecycle events published to %s with prefix %q", cfg.Events.URL, cfg.Events.SubjectPrefix)
	}

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(catalog, availabilitySvc, machine, log)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		catalog,
		availabilitySvc,
		machine,
		cfg.Reservation.DefaultBufferMinutes,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	createReservation := createReservationHandler.NewHandler(reservationSvc, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	updateReservation := updateReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	getResourceReservations := getResourceReservationsHandler.NewHandler(reservationSvc, location, log)
	getCustomerReservations := getCustomerReservationsHandler.NewHandler(reservationSvc, location, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Инициатор запроса из X-User-ID / X-User-Role
	r.Use(middleware.Actor(cfg.Reservation.IsPrivileged))

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты ресурса на дату
	api.HandleFunc("/resources/{resourceId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Проверка доступности конкретного окна
	api.HandleFunc("/resources/{resourceId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// Бронирования ресурса (календарь)
	api.HandleFunc("/resources/{resourceId}/reservations", getResourceReservations.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Частичное обновление, в том числе смена статуса
	protected.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPost)

	// Бронирования клиента
	protected.HandleFunc("/customers/{customerId}/reservations", getCustomerReservations.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
