// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Rule evaluation orders accepted by categorization.rule_order.
const (
	RuleOrderNewestFirst = "newest_first"
	RuleOrderOldestFirst = "oldest_first"
)

// Config represents the complete application configuration.
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Data           DataConfig           `mapstructure:"data" yaml:"data"`
	AI             AIConfig             `mapstructure:"ai" yaml:"ai"`
	Batch          BatchConfig          `mapstructure:"batch" yaml:"batch"`
	Reconcile      ReconcileConfig      `mapstructure:"reconcile" yaml:"reconcile"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	Export         ExportConfig         `mapstructure:"export" yaml:"export"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DataConfig locates every file and directory the application touches.
// Relative store file names are resolved against Directory.
type DataConfig struct {
	Directory          string `mapstructure:"directory" yaml:"directory"`
	ReceiptSourceDir   string `mapstructure:"receipt_source_dir" yaml:"receipt_source_dir"`
	PassbookSourceDir  string `mapstructure:"passbook_source_dir" yaml:"passbook_source_dir"`
	ReceiptArchiveDir  string `mapstructure:"receipt_archive_dir" yaml:"receipt_archive_dir"`
	PassbookArchiveDir string `mapstructure:"passbook_archive_dir" yaml:"passbook_archive_dir"`
	ExportDir          string `mapstructure:"export_dir" yaml:"export_dir"`

	RulesFile            string `mapstructure:"rules_file" yaml:"rules_file"`
	AccountsFile         string `mapstructure:"accounts_file" yaml:"accounts_file"`
	PassbooksFile        string `mapstructure:"passbooks_file" yaml:"passbooks_file"`
	FileListFile         string `mapstructure:"file_list_file" yaml:"file_list_file"`
	ResultsFile          string `mapstructure:"results_file" yaml:"results_file"`
	ExportedFile         string `mapstructure:"exported_file" yaml:"exported_file"`
	PassbookResultsFile  string `mapstructure:"passbook_results_file" yaml:"passbook_results_file"`
	PassbookExportedFile string `mapstructure:"passbook_exported_file" yaml:"passbook_exported_file"`
	TokenLogFile         string `mapstructure:"token_log_file" yaml:"token_log_file"`
}

type AIConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	Model          string  `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	CooldownMillis int     `mapstructure:"cooldown_millis" yaml:"cooldown_millis"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	APIKey         string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

type BatchConfig struct {
	TimeLimitSeconds int    `mapstructure:"time_limit_seconds" yaml:"time_limit_seconds"`
	LockFile         string `mapstructure:"lock_file" yaml:"lock_file"`
	MaxRetries       uint64 `mapstructure:"max_retries" yaml:"max_retries"`
}

type ReconcileConfig struct {
	HighAmountThreshold int64    `mapstructure:"high_amount_threshold" yaml:"high_amount_threshold"`
	TaxTolerance        int64    `mapstructure:"tax_tolerance" yaml:"tax_tolerance"`
	TaxExemptAccounts   []string `mapstructure:"tax_exempt_accounts" yaml:"tax_exempt_accounts"`
}

type CategorizationConfig struct {
	RuleOrder     string `mapstructure:"rule_order" yaml:"rule_order"`
	ErrorSentinel string `mapstructure:"error_sentinel" yaml:"error_sentinel"`
}

// ExportConfig holds the constant cells of the Yayoi import layout.
type ExportConfig struct {
	IdentifierFlag     string `mapstructure:"identifier_flag" yaml:"identifier_flag"`
	CreditAccount      string `mapstructure:"credit_account" yaml:"credit_account"`
	OutOfScopeTax      string `mapstructure:"out_of_scope_tax" yaml:"out_of_scope_tax"`
	TransactionType    string `mapstructure:"transaction_type" yaml:"transaction_type"`
	Adjustment         string `mapstructure:"adjustment" yaml:"adjustment"`
	UseCRLF            bool   `mapstructure:"use_crlf" yaml:"use_crlf"`
	DummyInvoiceNumber string `mapstructure:"dummy_invoice_number" yaml:"dummy_invoice_number"`

	TaxCodes TaxCodeConfig `mapstructure:"tax_codes" yaml:"tax_codes"`
}

// TaxCodeConfig holds the purchase tax category codes of the accounting
// application, by rate and qualified-invoice status.
type TaxCodeConfig struct {
	StandardQualified    string `mapstructure:"standard_qualified" yaml:"standard_qualified"`
	StandardNonQualified string `mapstructure:"standard_non_qualified" yaml:"standard_non_qualified"`
	ReducedQualified     string `mapstructure:"reduced_qualified" yaml:"reduced_qualified"`
	ReducedNonQualified  string `mapstructure:"reduced_non_qualified" yaml:"reduced_non_qualified"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config.yaml, then LEDGER_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.receipt-ledger")
	v.AddConfigPath(".receipt-ledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The API key is read from the unprefixed variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration holding only default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")
	v.SetDefault("data.receipt_source_dir", "inbox/receipts")
	v.SetDefault("data.passbook_source_dir", "inbox/passbooks")
	v.SetDefault("data.receipt_archive_dir", "archive/receipts")
	v.SetDefault("data.passbook_archive_dir", "archive/passbooks")
	v.SetDefault("data.export_dir", "exports")
	v.SetDefault("data.rules_file", "learning_rules.yaml")
	v.SetDefault("data.accounts_file", "accounts.yaml")
	v.SetDefault("data.passbooks_file", "passbooks.yaml")
	v.SetDefault("data.file_list_file", "files.yaml")
	v.SetDefault("data.results_file", "ocr_results.csv")
	v.SetDefault("data.exported_file", "exported.csv")
	v.SetDefault("data.passbook_results_file", "passbook_results.csv")
	v.SetDefault("data.passbook_exported_file", "passbook_exported.csv")
	v.SetDefault("data.token_log_file", "token_usage.csv")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout_seconds", 120)
	v.SetDefault("ai.cooldown_millis", 1500)
	v.SetDefault("ai.temperature", 0.1)

	v.SetDefault("batch.time_limit_seconds", 300)
	v.SetDefault("batch.lock_file", ".receipt-ledger.lock")
	v.SetDefault("batch.max_retries", 1)

	v.SetDefault("reconcile.high_amount_threshold", 50000)
	v.SetDefault("reconcile.tax_tolerance", 1)
	v.SetDefault("reconcile.tax_exempt_accounts", []string{
		"租税公課", "諸会費", "保険料", "支払保険料", "損害保険料",
		"支払利息", "法定福利費", "寄付金",
	})

	v.SetDefault("categorization.rule_order", RuleOrderNewestFirst)
	v.SetDefault("categorization.error_sentinel", "【推測エラー】")

	v.SetDefault("export.identifier_flag", "2000")
	v.SetDefault("export.credit_account", "役員借入金")
	v.SetDefault("export.out_of_scope_tax", "対象外")
	v.SetDefault("export.transaction_type", "0")
	v.SetDefault("export.adjustment", "no")
	v.SetDefault("export.use_crlf", false)
	v.SetDefault("export.dummy_invoice_number", "T0000000000000")
	v.SetDefault("export.tax_codes.standard_qualified", "共対仕入内10%適格")
	v.SetDefault("export.tax_codes.standard_non_qualified", "共対仕入内10%区分80%")
	v.SetDefault("export.tax_codes.reduced_qualified", "共対仕入内軽減8%適格")
	v.SetDefault("export.tax_codes.reduced_non_qualified", "共対仕入内軽減8%区分80%")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 600 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 600, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.AI.CooldownMillis < 0 {
		return fmt.Errorf("ai.cooldown_millis must not be negative, got: %d", config.AI.CooldownMillis)
	}

	if config.Batch.TimeLimitSeconds < 1 {
		return fmt.Errorf("batch.time_limit_seconds must be positive, got: %d", config.Batch.TimeLimitSeconds)
	}

	if config.Reconcile.TaxTolerance < 0 {
		return fmt.Errorf("reconcile.tax_tolerance must not be negative, got: %d", config.Reconcile.TaxTolerance)
	}

	switch config.Categorization.RuleOrder {
	case RuleOrderNewestFirst, RuleOrderOldestFirst:
	default:
		return fmt.Errorf("categorization.rule_order must be %q or %q, got: %q",
			RuleOrderNewestFirst, RuleOrderOldestFirst, config.Categorization.RuleOrder)
	}

	if strings.TrimSpace(config.Categorization.ErrorSentinel) == "" {
		return fmt.Errorf("categorization.error_sentinel must not be empty")
	}

	codes := config.Export.TaxCodes
	for key, code := range map[string]string{
		"standard_qualified":     codes.StandardQualified,
		"standard_non_qualified": codes.StandardNonQualified,
		"reduced_qualified":      codes.ReducedQualified,
		"reduced_non_qualified":  codes.ReducedNonQualified,
	} {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("export.tax_codes.%s must not be empty", key)
		}
	}

	return nil
}

// DataPath resolves a store file name against the data directory.
func (c *Config) DataPath(name string) string {
	if filepath.IsAbs(name) || c.Data.Directory == "" {
		return name
	}
	return filepath.Join(c.Data.Directory, name)
}

// Cooldown is the fixed delay enforced between two model calls.
func (a AIConfig) Cooldown() time.Duration {
	return time.Duration(a.CooldownMillis) * time.Millisecond
}

// Timeout bounds a single model call.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// TimeLimit is the wall-clock budget of one batch invocation.
func (b BatchConfig) TimeLimit() time.Duration {
	return time.Duration(b.TimeLimitSeconds) * time.Second
}

// NewlineSequence returns the line terminator of exported files.
func (e ExportConfig) NewlineSequence() string {
	if e.UseCRLF {
		return "\r\n"
	}
	return "\n"
}
