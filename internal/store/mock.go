package store

import "fjacquet/receipt-ledger/internal/models"

// MockMasterStore is an in-memory rule and master source for testing.
type MockMasterStore struct {
	Rules     []models.LearningRule
	Accounts  []models.AccountMaster
	Passbooks []models.PassbookMaster

	// Error flags for testing error conditions
	LoadRulesError     error
	LoadAccountsError  error
	LoadPassbooksError error
}

// LoadRules returns a copy of the mock rules.
func (m *MockMasterStore) LoadRules() ([]models.LearningRule, error) {
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	return append([]models.LearningRule{}, m.Rules...), nil
}

// LoadAccountMasters returns a copy of the mock accounts.
func (m *MockMasterStore) LoadAccountMasters() ([]models.AccountMaster, error) {
	if m.LoadAccountsError != nil {
		return nil, m.LoadAccountsError
	}
	return append([]models.AccountMaster{}, m.Accounts...), nil
}

// LoadPassbookMasters returns a copy of the mock passbook masters.
func (m *MockMasterStore) LoadPassbookMasters() ([]models.PassbookMaster, error) {
	if m.LoadPassbooksError != nil {
		return nil, m.LoadPassbooksError
	}
	return append([]models.PassbookMaster{}, m.Passbooks...), nil
}
