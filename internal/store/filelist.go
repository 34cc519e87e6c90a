package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

type fileListDocument struct {
	Files []models.FileRecord `yaml:"files"`
}

// FileList tracks every registered source document and its status.
type FileList struct {
	path   string
	now    func() time.Time
	logger logging.Logger
}

// NewFileList creates a file list backed by path.
func NewFileList(path string, logger logging.Logger) *FileList {
	return &FileList{path: path, now: time.Now, logger: withComponent(logger, "file_list")}
}

// Load returns all records in registration order.
func (l *FileList) Load() ([]models.FileRecord, error) {
	var doc fileListDocument
	if _, err := readYAML(l.path, &doc); err != nil {
		return nil, err
	}
	if doc.Files == nil {
		return []models.FileRecord{}, nil
	}
	return doc.Files, nil
}

// Save replaces the stored records.
func (l *FileList) Save(records []models.FileRecord) error {
	if records == nil {
		records = []models.FileRecord{}
	}
	return writeYAML(l.path, fileListDocument{Files: records})
}

// Register adds the candidates whose (kind, name) is not known yet, as
// pending. It returns the records added.
func (l *FileList) Register(candidates []models.FileRecord) ([]models.FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[string(r.Kind)+"/"+r.Name] = true
	}

	now := l.now()
	var added []models.FileRecord
	for _, c := range candidates {
		key := string(c.Kind) + "/" + c.Name
		if known[key] {
			continue
		}
		known[key] = true
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Status = models.FileStatusPending
		c.RegisteredAt = now
		c.UpdatedAt = now
		added = append(added, c)
	}
	if len(added) == 0 {
		return nil, nil
	}

	if err := l.Save(append(records, added...)); err != nil {
		return nil, err
	}
	l.logger.Info("Registered new files", logging.F(logging.FieldCount, len(added)))
	return added, nil
}

// Update stores rec in place of the record with the same ID.
func (l *FileList) Update(rec models.FileRecord) error {
	records, err := l.Load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == rec.ID {
			rec.UpdatedAt = l.now()
			records[i] = rec
			return l.Save(records)
		}
	}
	return fmt.Errorf("file %s is not registered", rec.ID)
}

// Runnable returns the records of kind that a batch run should process:
// pending ones and those left processing by an interrupted run, oldest first.
func (l *FileList) Runnable(kind models.DocumentKind) ([]models.FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	var out []models.FileRecord
	for _, r := range records {
		if r.Kind == kind && r.Status.IsRunnable() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}
