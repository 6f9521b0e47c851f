package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/config"
	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	appHTTP "github.com/absensigeo/absensi-backend-go/internal/handler/http"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/cache"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/cron"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/email"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/event"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/sse"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/storage"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/utils"
	"github.com/absensigeo/absensi-backend-go/internal/repository/postgresql"
	attendanceService "github.com/absensigeo/absensi-backend-go/internal/service/attendance"
	serviceAuth "github.com/absensigeo/absensi-backend-go/internal/service/auth"
	evidenceService "github.com/absensigeo/absensi-backend-go/internal/service/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
	letterService "github.com/absensigeo/absensi-backend-go/internal/service/letter"
	"github.com/absensigeo/absensi-backend-go/internal/service/notification"
	"github.com/absensigeo/absensi-backend-go/internal/service/report"
	scheduleService "github.com/absensigeo/absensi-backend-go/internal/service/schedule"
	userService "github.com/absensigeo/absensi-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}
	if redisClient == nil {
		slog.Warn("REDIS_ADDR not set, caching disabled")
	} else {
		defer redisClient.Close()
	}
	cacheHelper := cache.NewCacheHelper(redisClient, "absensi:", cfg.Redis.TTL)

	rules, err := schoolRules(cfg.School)
	if err != nil {
		log.Fatal("Invalid school configuration:", err)
	}
	evidenceUntil, err := attendance.ParseClock(cfg.School.EvidenceUntil)
	if err != nil {
		log.Fatal("Invalid EVIDENCE_UNTIL:", err)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	bus, err := event.NewBus(event.Config{KafkaBrokers: cfg.Kafka.Brokers}, logger)
	if err != nil {
		log.Fatal("Failed to initialize event bus:", err)
	}

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	evidenceRepo := postgresql.NewEvidenceRepository(db)
	letterRepo := postgresql.NewLetterRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	fileService := file.NewFileService(fileStorage)
	authService := serviceAuth.NewAuthService(transactor, userRepo, JWTService, JWTRepository)
	userSvc := userService.NewUserService(userRepo, cacheHelper, cfg.School.PhotoMaxEncodedKB)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		fileService,
		bus,
		report.NewXLSXWriter(),
		rules,
	)
	scheduleSvc := scheduleService.NewScheduleService(scheduleRepo)
	evidenceSvc := evidenceService.NewEvidenceService(transactor, evidenceRepo, fileService, evidenceService.Window{
		Location: rules.Location,
		Until:    evidenceUntil,
		MaxDays:  cfg.School.EvidenceMaxDays,
	})
	letterSvc := letterService.NewLetterService(letterRepo, fileService)

	hub := sse.NewHub(16)
	notification.NewNotifier(hub, userSvc, userRepo, emailService).Register(bus)

	scheduler := cron.NewScheduler()
	cron.NewSummaryJob(attendanceSvc, bus, cacheHelper, cfg.School.DailySummaryHour, rules.Location).RegisterJobs(scheduler)
	cron.NewTokenJobs(JWTRepository, JWTService).RegisterJobs(scheduler)

	handlers := appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService),
		User:       appHTTP.NewUserHandler(userSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Schedule:   appHTTP.NewScheduleHandler(scheduleSvc),
		Evidence:   appHTTP.NewEvidenceHandler(evidenceSvc),
		Letter:     appHTTP.NewLetterHandler(letterSvc),
		Stream:     appHTTP.NewStreamHandler(JWTService, hub),
	}

	router := appHTTP.NewRouter(JWTService, handlers, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		UploadsDir:     cfg.Storage.BasePath,
	})

	go func() {
		if err := bus.Run(ctx); err != nil {
			slog.Error("Event bus stopped", "error", err)
		}
	}()
	<-bus.Running()
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// open SSE streams only end when the hub closes
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
	if err := bus.Close(); err != nil {
		slog.Error("Event bus close error", "error", err)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "absensi-backend"),
		slog.String("env", app.Env),
	)
}

func schoolRules(school config.SchoolConfig) (attendance.Rules, error) {
	loc, err := time.LoadLocation(school.Timezone)
	if err != nil {
		return attendance.Rules{}, err
	}
	lateAfter, err := attendance.ParseClock(school.LateAfter)
	if err != nil {
		return attendance.Rules{}, fmt.Errorf("LATE_AFTER: %w", err)
	}
	checkOutFrom, err := attendance.ParseClock(school.CheckOutFrom)
	if err != nil {
		return attendance.Rules{}, fmt.Errorf("CHECK_OUT_FROM: %w", err)
	}

	return attendance.Rules{
		Location:     loc,
		LateAfter:    lateAfter,
		CheckOutFrom: checkOutFrom,
		Fence: utils.Geofence{
			Center:       utils.Point{Latitude: school.Latitude, Longitude: school.Longitude},
			RadiusMeters: school.RadiusMeters,
		},
	}, nil
}
