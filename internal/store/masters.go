package store

import (
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

type accountsDocument struct {
	Accounts []models.AccountMaster `yaml:"accounts"`
}

type passbooksDocument struct {
	Passbooks []models.PassbookMaster `yaml:"passbooks"`
}

// MasterStore reads the chart of accounts and the passbook keyword list.
type MasterStore struct {
	accountsPath  string
	passbooksPath string
	logger        logging.Logger
}

// NewMasterStore creates a store over the two master files.
func NewMasterStore(accountsPath, passbooksPath string, logger logging.Logger) *MasterStore {
	return &MasterStore{
		accountsPath:  accountsPath,
		passbooksPath: passbooksPath,
		logger:        withComponent(logger, "master_store"),
	}
}

// LoadAccountMasters returns the account titles offered to the classifier.
// A missing file yields an empty list.
func (s *MasterStore) LoadAccountMasters() ([]models.AccountMaster, error) {
	var doc accountsDocument
	found, err := readYAML(s.accountsPath, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Warn("Account master file not found", logging.F(logging.FieldFile, s.accountsPath))
		return []models.AccountMaster{}, nil
	}

	masters := make([]models.AccountMaster, 0, len(doc.Accounts))
	for _, m := range doc.Accounts {
		if m.Title != "" {
			masters = append(masters, m)
		}
	}
	return masters, nil
}

// LoadPassbookMasters returns the file-name keywords of the bank accounts.
// Entries missing either field are skipped.
func (s *MasterStore) LoadPassbookMasters() ([]models.PassbookMaster, error) {
	var doc passbooksDocument
	found, err := readYAML(s.passbooksPath, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Warn("Passbook master file not found", logging.F(logging.FieldFile, s.passbooksPath))
		return []models.PassbookMaster{}, nil
	}

	masters := make([]models.PassbookMaster, 0, len(doc.Passbooks))
	for _, m := range doc.Passbooks {
		if m.Keyword != "" && m.AccountName != "" {
			masters = append(masters, m)
		}
	}
	return masters, nil
}
