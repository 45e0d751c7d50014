package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/controller/handlers"
	"github.com/schedkit/timetable-bot/internal/export"
	"github.com/schedkit/timetable-bot/internal/render"
	"github.com/schedkit/timetable-bot/internal/service"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	timetables *service.TimetableService,
	syncs *service.SyncService,
	renderer *render.Renderer,
	exporter *export.ExcelExporter,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(timetables, syncs, renderer, exporter, logger)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers registers all command handlers and sets the command menu.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, c.handlers.HandleWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypeExact, c.handlers.HandleToday)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/next", bot.MatchTypeExact, c.handlers.HandleNext)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sync", bot.MatchTypeExact, c.handlers.HandleSync)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, c.handlers.HandleExport)

	return c.setCommands(ctx)
}

// setCommands sets the command list shown in the bot menu.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "week", Description: "Picture of the current week"},
		{Command: "today", Description: "Today's classes"},
		{Command: "next", Description: "Next upcoming class"},
		{Command: "sync", Description: "Update the calendar file"},
		{Command: "export", Description: "Download the week as .xlsx"},
		{Command: "help", Description: "Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Notify sends a plain text message to the user's private chat. Satisfies the
// background scheduler's notifier.
func (c *BotController) Notify(ctx context.Context, userID int64, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// Start runs the bot's long-polling loop until the context is cancelled.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
