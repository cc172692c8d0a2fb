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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	createAppointmentHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/delete_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/get_available_slots"
	getBoardHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/get_board"
	moveAppointmentHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/move_appointment"
	splitAppointmentHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/split_appointment"
	updateStatusHandler "github.com/m04kA/SMC-ShopScheduler/internal/api/handlers/update_status"
	"github.com/m04kA/SMC-ShopScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-ShopScheduler/internal/board"
	"github.com/m04kA/SMC-ShopScheduler/internal/config"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	techniciansCache "github.com/m04kA/SMC-ShopScheduler/internal/infra/cache/technicians"
	appointmentRepo "github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/memory"
	technicianRepo "github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/technician"
	timeOffRepo "github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/timeoff"
	"github.com/m04kA/SMC-ShopScheduler/internal/integrations/eventsink"
	getAvailableSlotsUC "github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopScheduler/pkg/logger"
	"github.com/m04kA/SMC-ShopScheduler/pkg/metrics"
	"github.com/m04kA/SMC-ShopScheduler/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SMC-ShopScheduler...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены). nil *Metrics безопасен для всех потребителей.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	var (
		appointments scheduling.AppointmentRepository
		technicians  techniciansCache.Source
		timeOff      scheduling.TimeOffRepository
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		seeds := cfg.SeedTechnicians()
		appointments = memory.NewAppointmentStore()
		technicians = memory.NewTechnicianStore(seeds...)
		timeOff = memory.NewTimeOffStore()
		log.Info("In-memory storage initialized (technicians=%d)", len(seeds))

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

		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		txMgr := txmanager.NewTransactionManager(wrappedDB)

		appointments = appointmentRepo.NewRepository(wrappedDB, txMgr)
		technicians = technicianRepo.NewRepository(wrappedDB, cfg.Scheduling.DefaultDailyCapacity)
		timeOff = timeOffRepo.NewRepository(wrappedDB)
	}

	// Кеш техников в Redis (если включен)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Кеш не обязателен: при ошибках чтения запросы идут в хранилище
			log.Warn("Redis is unavailable at %s: %v", cfg.Redis.Address, err)
		} else {
			log.Info("Connected to Redis at %s", cfg.Redis.Address)
		}
		cancel()
	}
	technicianProvider := techniciansCache.New(
		technicians,
		redisClient,
		time.Duration(cfg.Redis.TechniciansTTLSeconds)*time.Second,
		metricsCollector,
		log,
	)

	// Шина событий доски
	bus := events.NewBus(log)
	bus.Subscribe(events.Wildcard, func(e events.Event) error {
		log.Debug("Board event: id=%s, type=%s, appointment_id=%d", e.ID, e.Type, e.AppointmentID)
		return nil
	})

	if cfg.Kafka.Enabled {
		sink := eventsink.NewKafkaSink(cfg.Kafka.BrokerList(), cfg.Kafka.Topic, cfg.Kafka.BufferSize, metricsCollector, log)
		defer sink.Close()
		bus.Subscribe(events.Wildcard, sink.Handle)
		log.Info("Kafka event sink enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointments,
		technicianProvider,
		timeOff,
		cfg.Scheduling.LookAheadDays,
		cfg.Scheduling.SearchHorizonDays,
		cfg.Scheduling.MaxRangeDays,
		log,
	)

	coordinator := scheduling.NewCoordinator(
		appointments,
		technicianProvider,
		timeOff,
		getAvailableSlotsUseCase,
		board.New(bus, metricsCollector, log),
		bus,
		metricsCollector,
		scheduling.Settings{MaxRangeDays: cfg.Scheduling.MaxRangeDays},
		log,
	)

	// Инициализируем handlers
	getBoard := getBoardHandler.NewHandler(coordinator, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(coordinator, log)
	moveAppointment := moveAppointmentHandler.NewHandler(coordinator, log)
	updateStatus := updateStatusHandler.NewHandler(coordinator, log)
	splitAppointment := splitAppointmentHandler.NewHandler(coordinator, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(coordinator, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log.With("component", "http")))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Доска ---
	api.HandleFunc("/board", getBoard.Handle).Methods(http.MethodGet)

	// --- Поиск свободного места ---
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/slots/next", getAvailableSlots.HandleNext).Methods(http.MethodGet)

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/appointments/{appointmentId}/placement", moveAppointment.Handle).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{appointmentId}/position", moveAppointment.HandleReorder).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{appointmentId}/transitions", updateStatus.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/split", splitAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/merge", splitAppointment.HandleMerge).Methods(http.MethodPost)

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
