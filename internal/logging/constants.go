package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldFileID        = "file_id"
	FieldKind          = "document_kind"
	FieldBankType      = "bank_type"
	FieldTransactionID = "transaction_id"
	FieldRuleID        = "rule_id"
	FieldAccountTitle  = "account_title"
	FieldStrategy      = "strategy"
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldModel         = "model"
	FieldTokens        = "total_tokens"
	FieldOutputFile    = "output_file"
)
