package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

type BackupService interface {
	Snapshot(ctx context.Context) (*models.Backup, error)
	Info(ctx context.Context) (*models.BackupInfo, error)
	// Restore replaces the backed-up tables with the snapshot contents. Individual
	// records that fail are logged and counted; the returned error combines the
	// table-level failures.
	Restore(ctx context.Context, backup *models.Backup) (*models.RestoreReport, error)
	// Upload writes a fresh snapshot to object storage and returns its object name.
	Upload(ctx context.Context) (string, error)
}

type backupService struct {
	store   database.Store
	storage ObjectStorage
	now     Clock
	log     *logger.Logger
}

// NewBackupService builds the service; storage may be nil when uploads are not configured.
func NewBackupService(store database.Store, storage ObjectStorage, log *logger.Logger) BackupService {
	return newBackupService(store, storage, systemClock, log)
}

func newBackupService(store database.Store, storage ObjectStorage, now Clock, log *logger.Logger) *backupService {
	return &backupService{store: store, storage: storage, now: now, log: log}
}

func (s *backupService) Snapshot(ctx context.Context) (*models.Backup, error) {
	var data models.BackupData
	var err error

	if data.Categories, err = repositories.NewCategoryRepo(s.store).List(ctx); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	if data.Inventory, err = repositories.NewInventoryRepo(s.store).List(ctx); err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if data.Sales, err = repositories.NewSaleRepo(s.store).List(ctx, 0); err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	if data.Staff, err = repositories.NewStaffRepo(s.store).List(ctx); err != nil {
		return nil, fmt.Errorf("read staff: %w", err)
	}
	if data.Budget, err = repositories.NewBudgetRepo(s.store).List(ctx); err != nil {
		return nil, fmt.Errorf("read budget: %w", err)
	}

	return &models.Backup{
		Timestamp: s.now(),
		Version:   models.BackupVersion,
		Source:    string(s.store.Backend()),
		Data:      data,
	}, nil
}

func (s *backupService) Info(ctx context.Context) (*models.BackupInfo, error) {
	repo := repositories.NewBackupRepo(s.store)
	info := &models.BackupInfo{Backend: string(s.store.Backend()), Tables: map[string]int64{}}
	for _, table := range repositories.BackupTables {
		n, err := repo.Count(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		info.Tables[table] = n
		info.Total += n
	}
	return info, nil
}

func (s *backupService) Restore(ctx context.Context, backup *models.Backup) (*models.RestoreReport, error) {
	if backup == nil {
		return nil, common.ValidationError("backup", "backup body is required")
	}
	if backup.Version != "" && backup.Version != models.BackupVersion {
		return nil, common.ValidationError("version", fmt.Sprintf("unsupported backup version %q", backup.Version))
	}

	repo := repositories.NewBackupRepo(s.store)
	report := &models.RestoreReport{Restored: map[string]int{}, Failed: map[string]int{}}

	// children first, so foreign keys never point at a missing row
	for i := len(repositories.BackupTables) - 1; i >= 0; i-- {
		table := repositories.BackupTables[i]
		if err := repo.Clear(ctx, table); err != nil {
			return report, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	var errs error
	for _, table := range repositories.BackupTables {
		inserts := restoreInserts(repo, &backup.Data, table)
		for _, insert := range inserts {
			if err := insert(ctx); err != nil {
				report.Failed[table]++
				s.log.Warn(s.log.WithFields(ctx, map[string]any{"table": table, "error": err.Error()}), "restore record failed")
				continue
			}
			report.Restored[table]++
		}
		if report.Failed[table] > 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: %d of %d records failed", table, report.Failed[table], len(inserts)))
		}
		if err := repo.SyncSequence(ctx, table); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: sync sequence: %w", table, err))
		}
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{"restored": report.Restored, "failed": report.Failed}), "restore finished")
	return report, errs
}

type insertFunc func(ctx context.Context) error

func restoreInserts(repo repositories.BackupRepository, data *models.BackupData, table string) []insertFunc {
	var out []insertFunc
	switch table {
	case "categories":
		for _, c := range data.Categories {
			out = append(out, func(ctx context.Context) error { return repo.InsertCategory(ctx, c) })
		}
	case "staff":
		for _, st := range data.Staff {
			out = append(out, func(ctx context.Context) error { return repo.InsertStaff(ctx, st) })
		}
	case "inventory":
		for _, item := range data.Inventory {
			out = append(out, func(ctx context.Context) error { return repo.InsertItem(ctx, item) })
		}
	case "sales":
		for _, sale := range data.Sales {
			out = append(out, func(ctx context.Context) error { return repo.InsertSale(ctx, sale) })
		}
	case "budget":
		for _, b := range data.Budget {
			out = append(out, func(ctx context.Context) error { return repo.InsertBudget(ctx, b) })
		}
	}
	return out
}

// ObjectName names a backup object by its timestamp plus a random suffix.
func ObjectName(at time.Time) string {
	return fmt.Sprintf("backups/hardware_store_backup_%s_%s.json", at.UTC().Format("20060102_150405"), uuid.NewString()[:8])
}

func (s *backupService) Upload(ctx context.Context) (string, error) {
	if s.storage == nil {
		return "", common.NewError(common.CodeValidation, "object storage is not configured")
	}
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	payload, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := s.storage.EnsureBucketExists(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	name := ObjectName(backup.Timestamp)
	if err := s.storage.Upload(ctx, name, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	s.log.Info(s.log.WithFields(ctx, map[string]any{"object": name, "bytes": len(payload)}), "backup uploaded")
	return name, nil
}
