package models

import "time"

const BackupVersion = "1.0"

// BackupData holds every backed-up table. Users and ledger transactions are not included.
type BackupData struct {
	Categories []*Category      `json:"categories"`
	Inventory  []*InventoryItem `json:"inventory"`
	Sales      []*Sale          `json:"sales"`
	Staff      []*Staff         `json:"staff"`
	Budget     []*Budget        `json:"budget"`
}

type Backup struct {
	Timestamp time.Time  `json:"timestamp"`
	Version   string     `json:"version"`
	Source    string     `json:"source"`
	Data      BackupData `json:"data"`
}

// BackupInfo reports the row count of each backed-up table.
type BackupInfo struct {
	Backend string           `json:"backend"`
	Tables  map[string]int64 `json:"tables"`
	Total   int64            `json:"total_records"`
}

// RestoreReport counts what a restore wrote and what it skipped.
type RestoreReport struct {
	Restored map[string]int `json:"restored"`
	Failed   map[string]int `json:"failed"`
}
