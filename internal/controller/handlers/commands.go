package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/export"
	"github.com/schedkit/timetable-bot/internal/ics"
	"github.com/schedkit/timetable-bot/internal/service"
)

// HandleStart handles the /start command.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"Hi, %s!\n\n"+
			"I keep your weekly class timetable and turn it into calendars, "+
			"images and reminders.\n\n"+
			"Commands:\n"+
			"/week - Picture of the current week\n"+
			"/today - Today's classes\n"+
			"/next - The next upcoming class\n"+
			"/sync - Push the semester into your calendar file\n"+
			"/export - Download the week as a spreadsheet\n"+
			"/help - Show help",
		update.Message.From.FirstName,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	})
}

// HandleHelp handles the /help command.
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "Commands:\n\n" +
		"/week - Picture of the current week's timetable\n" +
		"/today - List today's classes with times\n" +
		"/next - Show the next upcoming class\n" +
		"/sync - Rebuild the semester calendar file from your schedule\n" +
		"/export - Download the current week as an .xlsx file\n" +
		"/help - Show this help\n\n" +
		"Classes repeat weekly on the weeks configured for each course. " +
		"The week picture and exports always show the week you are in right now."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleWeek handles the /week command: renders the current week as a PNG.
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID := update.Message.From.ID

	view, err := h.timetables.WeekViewAt(ctx, userID, time.Now())
	if err != nil {
		h.replyError(ctx, b, update, err, "build week view")
		return
	}

	title := fmt.Sprintf("%s, week %d", view.Schedule.Name, view.WeekNumber)
	data, err := h.renderer.RenderWeek(view.Blocks, title, time.Now())
	if err != nil {
		h.replyError(ctx, b, update, err, "render week image")
		return
	}

	b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(data),
		},
		Caption: title,
	})
}

// HandleToday handles the /today command.
func (h *Handlers) HandleToday(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID := update.Message.From.ID

	view, err := h.timetables.DayViewAt(ctx, userID, time.Now())
	if err != nil {
		h.replyError(ctx, b, update, err, "build day view")
		return
	}

	if len(view.Blocks) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("No classes today (week %d). Enjoy the free day!", view.WeekNumber),
		})
		return
	}

	text := fmt.Sprintf("Today, week %d:\n\n", view.WeekNumber)
	for _, block := range view.Blocks {
		text += h.formatBlockLine(block) + "\n"
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

// HandleNext handles the /next command.
func (h *Handlers) HandleNext(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID := update.Message.From.ID

	next, err := h.timetables.NextSession(ctx, userID, time.Now())
	if err != nil {
		h.replyError(ctx, b, update, err, "find next session")
		return
	}

	if next == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Nothing scheduled in the next two weeks.",
		})
		return
	}

	text := fmt.Sprintf("Next: %s\n%s - %s",
		next.Rule.Name,
		next.Start.Format("Mon 02 Jan 15:04"),
		next.End.Format("15:04"),
	)
	if next.Rule.Location != "" {
		text += "\n" + next.Rule.Location
	}
	if next.Rule.TeacherName != "" {
		text += "\n" + next.Rule.TeacherName
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

// HandleSync handles the /sync command: materializes the semester into the
// calendar file.
func (h *Handlers) HandleSync(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID := update.Message.From.ID

	stats, err := h.syncs.Sync(ctx, userID, ics.SweepTagged)
	if err != nil {
		h.replyError(ctx, b, update, err, "sync calendar")
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("Calendar updated: %d events written, %d replaced, %d of yours kept.",
			stats.Written, stats.Swept, stats.Kept),
	})
}

// HandleExport handles the /export command: sends the current week as .xlsx.
func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID := update.Message.From.ID

	view, err := h.timetables.WeekViewAt(ctx, userID, time.Now())
	if err != nil {
		h.replyError(ctx, b, update, err, "build week view")
		return
	}

	title := fmt.Sprintf("%s, week %d", view.Schedule.Name, view.WeekNumber)
	buf, filename, err := h.exporter.ExportWeek(view.Blocks, title)
	if errors.Is(err, export.ErrExportNoBlocks) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("Week %d has no classes, nothing to export.", view.WeekNumber),
		})
		return
	}
	if err != nil {
		h.replyError(ctx, b, update, err, "export week")
		return
	}

	b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: update.Message.Chat.ID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     buf,
		},
		Caption: title,
	})
}

// replyError logs the failure and sends the user a short, actionable message.
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, update *models.Update, err error, op string) {
	if errors.Is(err, service.ErrNoActiveSchedule) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "You have no active schedule yet.",
		})
		return
	}

	h.logger.Error("Command failed",
		zap.String("op", op),
		zap.Int64("user_id", update.Message.From.ID),
		zap.Error(err),
	)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Something went wrong, please try again later.",
	})
}
