package store

import (
	"time"

	"fjacquet/receipt-ledger/internal/common"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// TokenLog is the append-only record of model token consumption.
type TokenLog struct {
	path   string
	now    func() time.Time
	logger logging.Logger
}

// NewTokenLog creates a token log backed by path.
func NewTokenLog(path string, logger logging.Logger) *TokenLog {
	return &TokenLog{path: path, now: time.Now, logger: withComponent(logger, "token_log")}
}

// Append records usages, stamping those without a timestamp.
func (l *TokenLog) Append(usages ...models.TokenUsage) error {
	for i := range usages {
		if usages[i].Timestamp.IsZero() {
			usages[i].Timestamp = models.NewTimestamp(l.now())
		}
	}
	return common.AppendCSVFile(l.path, usages, l.logger)
}

// Load returns every recorded usage.
func (l *TokenLog) Load() ([]models.TokenUsage, error) {
	return common.ReadCSVFile[models.TokenUsage](l.path, l.logger)
}
