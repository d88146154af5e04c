package app

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/repositories"
	"taskboard/internal/routes"
	"taskboard/internal/scheduler"
	"taskboard/internal/services"
)

func Run() {
	cfg := config.LoadConfig()

	middleware.SetSigningKey([]byte(cfg.Auth.JWTSecret))

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// === Services ===
	authService := services.NewAuthService()

	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	// Telegram-доставка опциональна: без токена просто работаем без пушей
	var notifier services.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken, userRepo)
		if err != nil {
			log.Printf("[app][warn] telegram disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	userService := services.NewUserService(userRepo, emailService, authService)
	taskService := services.NewTaskService(taskRepo, userRepo, notificationRepo, notifier)
	notificationService := services.NewNotificationService(notificationRepo)

	// === Deadline scheduler ===
	schedCfg, err := buildSchedulerConfig(cfg.Scheduler)
	if err != nil {
		log.Fatal("Ошибка конфигурации планировщика: ", err)
	}
	sched := scheduler.New(schedCfg, taskRepo, notificationRepo, notifier, nil)
	if err := sched.Start(); err != nil {
		log.Fatal("Ошибка запуска планировщика: ", err)
	}
	defer sched.Stop()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		taskHandler,
		notificationHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func buildSchedulerConfig(sc config.SchedulerConfig) (scheduler.Config, error) {
	var out scheduler.Config
	var err error

	if out.FineInterval, err = config.ParseDurationOrDefault("scheduler.fine_interval", sc.FineInterval, time.Minute); err != nil {
		return out, err
	}
	if out.Tolerance, err = config.ParseDurationOrDefault("scheduler.minute_before_tolerance", sc.Tolerance, 30*time.Second); err != nil {
		return out, err
	}
	if out.SuppressionWindow, err = config.ParseDurationOrDefault("scheduler.suppression_window", sc.SuppressionWindow, 2*time.Minute); err != nil {
		return out, err
	}
	if out.CatchupDelay, err = config.ParseDurationOrDefault("scheduler.catchup_delay", sc.CatchupDelay, 5*time.Second); err != nil {
		return out, err
	}

	out.CoarseHour, out.CoarseMinute, err = parseCoarseAt(sc.CoarseAt)
	if err != nil {
		return out, err
	}
	out.CoarseSet = true

	if sc.Timezone != "" {
		loc, err := time.LoadLocation(sc.Timezone)
		if err != nil {
			return out, fmt.Errorf("scheduler.timezone: %w", err)
		}
		out.Location = loc
	}
	return out, nil
}

func parseCoarseAt(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("scheduler.coarse_at: %q is not HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduler.coarse_at: bad hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduler.coarse_at: bad minute in %q", s)
	}
	return hour, minute, nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
