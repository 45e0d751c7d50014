package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/app"
	"github.com/schedkit/timetable-bot/internal/config"
	"github.com/schedkit/timetable-bot/internal/controller"
	"github.com/schedkit/timetable-bot/internal/export"
	"github.com/schedkit/timetable-bot/internal/ics"
	"github.com/schedkit/timetable-bot/internal/render"
	"github.com/schedkit/timetable-bot/internal/repository"
	"github.com/schedkit/timetable-bot/internal/service"
	"github.com/schedkit/timetable-bot/internal/timetable"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting timetable bot",
		zap.String("environment", cfg.Environment),
		zap.Time("semester_start", cfg.SemesterStart),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	periods := timetable.DefaultPeriods()
	if cfg.PeriodsFile != "" {
		loaded, err := timetable.LoadPeriods(cfg.PeriodsFile)
		if err != nil {
			logger.Warn("Failed to load period table, using built-in",
				zap.String("path", cfg.PeriodsFile),
				zap.Error(err),
			)
		} else {
			periods = loaded
		}
	}

	convention := timetable.ParseWeekdayConvention(cfg.WeekStart)

	scheduleRepo := repository.NewScheduleRepository(pool, logger)
	courseRepo := repository.NewCourseRepository(pool, logger)

	timetables := service.NewTimetableService(
		scheduleRepo, courseRepo,
		periods, cfg.SemesterStart, cfg.SearchHorizonDays,
		logger,
	)
	sink := ics.NewFileSink(cfg.ICSPath, logger)
	syncs := service.NewSyncService(timetables, sink, logger)

	renderer := render.NewRenderer(periods, convention, cfg.VisibleStartHour, cfg.VisibleEndHour, cfg.FontPath)
	exporter := export.NewExcelExporter(periods, convention, logger)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, timetables, syncs, renderer, exporter, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	scheduler := app.NewScheduler(scheduleRepo, timetables, syncs, botController, cfg.ReminderLeadMinutes, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start background scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Shutting down")
}
