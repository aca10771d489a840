// Command dbtool backs up, restores and migrates the store outside the server.
//
//	dbtool backup -out snapshot.json
//	dbtool restore -in snapshot.json
//	dbtool migrate -sqlite hardware_inventory.db
//
// The target database is chosen the same way the server chooses it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hardwarestore/internal/config"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

const usage = "usage: dbtool <backup -out FILE | restore -in FILE | migrate -sqlite PATH>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "dbtool",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      "console",
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error(ctx, os.Args[1]+" failed", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	out := fs.String("out", "", "file to write the snapshot to")
	in := fs.String("in", "", "snapshot file to restore")
	sqlitePath := fs.String("sqlite", "", "embedded database to copy from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg.Database.Options(), log)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := database.InitSchema(ctx, store, cfg.Admin.Seed(), log); err != nil {
		return err
	}
	backups := services.NewBackupService(store, nil, log)

	switch command {
	case "backup":
		if *out == "" {
			return errors.New("backup needs -out")
		}
		return writeSnapshot(ctx, backups, *out)
	case "restore":
		if *in == "" {
			return errors.New("restore needs -in")
		}
		backup, err := readSnapshot(*in)
		if err != nil {
			return err
		}
		return restore(ctx, backups, backup, log)
	case "migrate":
		if *sqlitePath == "" {
			return errors.New("migrate needs -sqlite")
		}
		if store.Backend() != database.BackendPostgres {
			return fmt.Errorf("migrate copies into the hosted database; set %s", config.EnvDatabaseURL)
		}
		return migrate(ctx, *sqlitePath, backups, cfg.Admin.Seed(), log)
	default:
		return errors.New(usage)
	}
}

func writeSnapshot(ctx context.Context, backups services.BackupService, path string) error {
	backup, err := backups.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readSnapshot(path string) (*models.Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &backup, nil
}

// restore logs the per-table counts before reporting any failure.
func restore(ctx context.Context, backups services.BackupService, backup *models.Backup, log *logger.Logger) error {
	report, err := backups.Restore(ctx, backup)
	if report != nil {
		for table, n := range report.Restored {
			log.Info(log.WithFields(ctx, map[string]any{
				"table":    table,
				"restored": n,
				"failed":   report.Failed[table],
			}), "table restored")
		}
	}
	return err
}

// migrate copies an embedded file into target. The file is brought up to the
// current schema first, the same way the server opens it.
func migrate(ctx context.Context, sqlitePath string, target services.BackupService, seed database.SeedOptions, log *logger.Logger) error {
	if _, err := os.Stat(sqlitePath); err != nil {
		return err
	}
	source, err := database.OpenSQLite(ctx, sqlitePath)
	if err != nil {
		return err
	}
	defer source.Close()
	if err := database.InitSchema(ctx, source, seed, log); err != nil {
		return fmt.Errorf("upgrade %s: %w", sqlitePath, err)
	}

	backup, err := services.NewBackupService(source, nil, log).Snapshot(ctx)
	if err != nil {
		return err
	}
	return restore(ctx, target, backup, log)
}
