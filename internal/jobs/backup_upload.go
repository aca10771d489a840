package jobs

import (
	"context"

	"hardwarestore/pkg/logger"
)

// SnapshotUploader writes a snapshot of the store to object storage.
type SnapshotUploader interface {
	Upload(ctx context.Context) (string, error)
}

type BackupJob struct {
	uploader SnapshotUploader
	log      *logger.Logger
}

func NewBackupJob(uploader SnapshotUploader, log *logger.Logger) *BackupJob {
	return &BackupJob{uploader: uploader, log: log}
}

func (j *BackupJob) Run(ctx context.Context) error {
	object, err := j.uploader.Upload(ctx)
	if err != nil {
		return err
	}
	j.log.Info(j.log.WithField(ctx, "object", object), "backup uploaded")
	return nil
}
