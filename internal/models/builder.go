package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionBuilder provides a fluent API for constructing ClassifiedTransaction values.
// The first error encountered is kept and returned by Build.
type TransactionBuilder struct {
	tx  ClassifiedTransaction
	err error
}

// NewTransactionBuilder creates a builder with the out-of-scope tax code as default.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: ClassifiedTransaction{
			TaxCategoryCode: TaxCodeOutOfScope,
		},
	}
}

// WithID sets the transaction ID. An empty ID is replaced by a UUID at Build time.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.ID = id
	return b
}

func (b *TransactionBuilder) WithProcessedAt(t time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.ProcessedAt = NewTimestamp(t)
	return b
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.tx.TransactionDate = NewDate(date)
	return b
}

func (b *TransactionBuilder) WithCounterparty(name string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.CounterpartyName = strings.TrimSpace(name)
	return b
}

func (b *TransactionBuilder) WithDescription(desc string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Description = strings.TrimSpace(desc)
	return b
}

// WithClassification sets the account title and sub-account.
func (b *TransactionBuilder) WithClassification(accountTitle, subAccount string, learned bool) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(accountTitle) == "" {
		b.err = errors.New("account title cannot be empty")
		return b
	}
	b.tx.AccountTitle = accountTitle
	b.tx.SubAccount = subAccount
	b.tx.IsLearned = learned
	return b
}

// WithAmounts sets the tax-inclusive amount, the tax amount and the tax rate.
func (b *TransactionBuilder) WithAmounts(amount, tax int64, rate int) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if tax < 0 || amount < tax {
		b.err = fmt.Errorf("invalid amounts: amount=%d tax=%d", amount, tax)
		return b
	}
	b.tx.AmountInclusiveTax = amount
	b.tx.TaxAmount = tax
	b.tx.TaxRate = rate
	return b
}

func (b *TransactionBuilder) WithInvoiceNumber(invoice string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.InvoiceNumber = strings.TrimSpace(invoice)
	return b
}

func (b *TransactionBuilder) WithTaxCategoryCode(code string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.TaxCategoryCode = code
	return b
}

func (b *TransactionBuilder) WithFileLink(link string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.FileLink = link
	return b
}

func (b *TransactionBuilder) WithNote(note string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Note = strings.TrimSpace(note)
	return b
}

// WithSource records the originating file and the raw payload for auditing.
func (b *TransactionBuilder) WithSource(fileID, rawPayload string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.SourceFileID = fileID
	b.tx.RawOCR = rawPayload
	return b
}

// Build validates and returns the transaction.
func (b *TransactionBuilder) Build() (ClassifiedTransaction, error) {
	if b.err != nil {
		return ClassifiedTransaction{}, b.err
	}
	if b.tx.TransactionDate.IsZero() {
		return ClassifiedTransaction{}, errors.New("transaction date is required")
	}
	if b.tx.AccountTitle == "" {
		return ClassifiedTransaction{}, errors.New("account title is required")
	}
	if b.tx.ID == "" {
		b.tx.ID = uuid.NewString()
	}
	return b.tx, nil
}
