// Package extraction sends source documents to the vision model and decodes
// the JSON line items it returns. Decoding is defensive: numbers may arrive as
// strings, fields may be null, and the array may be wrapped in a code fence.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/parsererror"
	"fjacquet/receipt-ledger/internal/textutils"
)

// Extractor runs one document through the vision model and returns the raw
// response text. categorizer.GeminiClient implements it.
type Extractor interface {
	ExtractDocument(ctx context.Context, prompt, mimeType string, data []byte) (string, models.TokenUsage, error)
}

// Service extracts line items from receipt and passbook documents.
type Service struct {
	extractor Extractor
	logger    logging.Logger
}

// NewService creates an extraction service.
func NewService(extractor Extractor, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		extractor: extractor,
		logger:    logger.WithField(logging.FieldComponent, "extraction"),
	}
}

// ExtractReceipts returns the receipt lines of one document. Token usage is
// returned even when the payload cannot be decoded.
func (s *Service) ExtractReceipts(ctx context.Context, file models.FileRecord, data []byte) ([]models.RawOcrLine, models.TokenUsage, error) {
	text, usage, err := s.extractor.ExtractDocument(ctx, ReceiptPrompt(file.Name), file.MIMEType, data)
	usage.File = file.Name
	if err != nil {
		return nil, usage, fmt.Errorf("receipt extraction failed for %s: %w", file.Name, err)
	}
	lines, err := ParseReceipts(text, file.Name)
	if err != nil {
		return nil, usage, err
	}
	s.logger.Debug("Receipt lines extracted",
		logging.F(logging.FieldFile, file.Name),
		logging.F(logging.FieldCount, len(lines)))
	return lines, usage, nil
}

// ExtractPassbook returns the rows of one passbook page.
func (s *Service) ExtractPassbook(ctx context.Context, file models.FileRecord, data []byte) ([]models.PassbookRawLine, models.TokenUsage, error) {
	text, usage, err := s.extractor.ExtractDocument(ctx, PassbookPrompt(file.BankType), file.MIMEType, data)
	usage.File = file.Name
	if err != nil {
		return nil, usage, fmt.Errorf("passbook extraction failed for %s: %w", file.Name, err)
	}
	rows, err := ParsePassbook(text, file.Name)
	if err != nil {
		return nil, usage, err
	}
	s.logger.Debug("Passbook rows extracted",
		logging.F(logging.FieldFile, file.Name),
		logging.F(logging.FieldBankType, string(file.BankType)),
		logging.F(logging.FieldCount, len(rows)))
	return rows, usage, nil
}

// ParseReceipts decodes a receipt extraction payload. Unreadable numbers
// become zero with a review marker carrying the text as read.
func ParseReceipts(payload, fileName string) ([]models.RawOcrLine, error) {
	var items []receiptItem
	if err := decodeArray(payload, fileName, "JSON array of receipt lines", &items); err != nil {
		return nil, err
	}

	lines := make([]models.RawOcrLine, 0, len(items))
	for _, it := range items {
		note := it.Note.String()
		note = flagUnreadable(note, "金額", it.Amount)
		note = flagUnreadable(note, "税額", it.TaxAmount)
		note = flagUnreadable(note, "税率", it.TaxRate)

		invoice := it.InvoiceNumber.String()
		if invoice == "" {
			invoice = it.TaxCode.String()
		}
		if invoice == "" {
			invoice = textutils.ExtractInvoiceNumber(note)
		}
		source := it.Filename.String()
		if source == "" {
			source = fileName
		}

		lines = append(lines, models.RawOcrLine{
			Date:               it.Date.String(),
			CounterpartyName:   it.StoreName.String(),
			Description:        it.Description.String(),
			TaxRate:            it.TaxRate.Int(),
			AmountInclusiveTax: it.Amount.Value,
			TaxAmount:          it.TaxAmount.Value,
			InvoiceNumber:      invoice,
			SourceFilename:     source,
			Note:               note,
		})
	}
	return lines, nil
}

// ParsePassbook decodes a passbook extraction payload. A null or missing
// balance stays nil.
func ParsePassbook(payload, fileName string) ([]models.PassbookRawLine, error) {
	var items []passbookItem
	if err := decodeArray(payload, fileName, "JSON array of passbook rows", &items); err != nil {
		return nil, err
	}

	rows := make([]models.PassbookRawLine, 0, len(items))
	for _, it := range items {
		note := it.Note.String()
		note = flagUnreadable(note, "出金額", it.Withdrawal)
		note = flagUnreadable(note, "入金額", it.Deposit)
		note = flagUnreadable(note, "残高", it.Balance)

		row := models.PassbookRawLine{
			TransactionDate: it.Date.String(),
			Description:     it.Description.String(),
			Withdrawal:      models.Yen(it.Withdrawal.Value),
			Deposit:         models.Yen(it.Deposit.Value),
			Note:            note,
		}
		if it.Balance.Present && !it.Balance.Invalid {
			row.Balance = models.BalancePtr(models.Yen(it.Balance.Value))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeArray(payload, fileName, expected string, v interface{}) error {
	clean := CleanModelJSON(payload)
	if clean == "" || clean[0] != '[' {
		return &parsererror.InvalidFormatError{
			FilePath:             fileName,
			ExpectedFormat:       expected,
			ActualContentSnippet: parsererror.Snippet(payload, 120),
			Msg:                  "response is not a JSON array",
		}
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return &parsererror.InvalidFormatError{
			FilePath:             fileName,
			ExpectedFormat:       expected,
			ActualContentSnippet: parsererror.Snippet(payload, 120),
			Msg:                  err.Error(),
		}
	}

	var n int
	switch items := v.(type) {
	case *[]receiptItem:
		n = len(*items)
	case *[]passbookItem:
		n = len(*items)
	}
	if n == 0 {
		return &parsererror.DataExtractionError{
			FilePath:  fileName,
			FieldName: "items",
			Reason:    "empty array",
			Msg:       "no line items detected",
		}
	}
	return nil
}

func flagUnreadable(note, field string, n flexNumber) string {
	if !n.Invalid {
		return note
	}
	return models.AppendNote(note, models.NoteAmountUnreadable, fmt.Sprintf("%s:%s", field, n.Raw))
}
