package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
)

// BackupHandlers serves /api/backup.
type BackupHandlers struct {
	backups services.BackupService
}

func NewBackupHandlers(backups services.BackupService) *BackupHandlers {
	return &BackupHandlers{backups: backups}
}

// Download godoc
// @Summary Download every table as one JSON document
// @Tags backup
// @Produce json
// @Success 200 {object} models.Backup
// @Router /backup/download [get]
func (h *BackupHandlers) Download(c echo.Context) error {
	backup, err := h.backups.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	name := fmt.Sprintf("hardware_store_backup_%s.json", backup.Timestamp.Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.JSON(http.StatusOK, backup)
}

func (h *BackupHandlers) Info(c echo.Context) error {
	info, err := h.backups.Info(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// ViewTable returns the rows one table would contribute to a backup.
func (h *BackupHandlers) ViewTable(c echo.Context) error {
	table := c.Param("table")
	backup, err := h.backups.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}

	var rows any
	switch table {
	case "categories":
		rows = nonNil(backup.Data.Categories)
	case "inventory":
		rows = nonNil(backup.Data.Inventory)
	case "sales":
		rows = nonNil(backup.Data.Sales)
	case "staff":
		rows = nonNil(backup.Data.Staff)
	case "budget":
		rows = nonNil(backup.Data.Budget)
	default:
		return common.ValidationError("table", fmt.Sprintf("unknown table %q", table))
	}
	return c.JSON(http.StatusOK, map[string]any{"table": table, "rows": rows})
}

// Restore answers 207 when some records could not be written.
func (h *BackupHandlers) Restore(c echo.Context) error {
	var backup models.Backup
	if err := bind(c, &backup); err != nil {
		return err
	}
	report, err := h.backups.Restore(c.Request().Context(), &backup)
	if err != nil {
		if report == nil {
			return err
		}
		return c.JSON(http.StatusMultiStatus, map[string]any{
			"message": "Restore finished with errors",
			"error":   err.Error(),
			"report":  report,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Restore completed", "report": report})
}

func (h *BackupHandlers) Upload(c echo.Context) error {
	object, err := h.backups.Upload(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Backup uploaded", "object": object})
}
