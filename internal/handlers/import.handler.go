package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/fasthttp/router"
	"github.com/inkpress/printdesk/internal/services"
	xhttp "github.com/inkpress/printdesk/pkg/http"
)

type ImportService interface {
	Import(ctx context.Context, path string) (int, error)
}

type ImportHandler struct {
	svc     ImportService
	csvPath string
}

func RegisterImportRoutes(r *router.Router, h *ImportHandler) {
	r.GET("/migrate-data", h.MigrateData)
}

func NewImportHandler(svc ImportService, csvPath string) *ImportHandler {
	return &ImportHandler{
		svc:     svc,
		csvPath: csvPath,
	}
}

func (h *ImportHandler) MigrateData(ctx *xhttp.RequestCtx) {
	migrated, err := h.svc.Import(ctx, h.csvPath)
	if err != nil {
		if errors.Is(err, services.ErrImportFileNotFound) {
			writeMessage(ctx, xhttp.StatusNotFound,
				fmt.Sprintf("Error: records.csv not found at %s. Please place it there for migration.", h.csvPath))
			return
		}
		writeMessage(ctx, xhttp.StatusInternalServerError, "Migration failed: "+err.Error())
		return
	}

	writeMessage(ctx, xhttp.StatusOK,
		fmt.Sprintf("Successfully migrated %d new transactions.", migrated))
}
