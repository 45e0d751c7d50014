package handlers

import (
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/export"
	"github.com/schedkit/timetable-bot/internal/render"
	"github.com/schedkit/timetable-bot/internal/service"
)

// Handlers holds all dependencies for command handling.
type Handlers struct {
	timetables *service.TimetableService
	syncs      *service.SyncService
	renderer   *render.Renderer
	exporter   *export.ExcelExporter
	logger     *zap.Logger
}

func NewHandlers(
	timetables *service.TimetableService,
	syncs *service.SyncService,
	renderer *render.Renderer,
	exporter *export.ExcelExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		timetables: timetables,
		syncs:      syncs,
		renderer:   renderer,
		exporter:   exporter,
		logger:     logger,
	}
}
