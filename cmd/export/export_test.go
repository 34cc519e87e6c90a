package export_test

import (
	"testing"

	"fjacquet/receipt-ledger/cmd/export"

	"github.com/stretchr/testify/assert"
)

func TestExportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "export", export.Cmd.Use)
	assert.Contains(t, export.Cmd.Short, "Yayoi")
	assert.Contains(t, export.Cmd.Long, "Shift_JIS")
	assert.NotNil(t, export.Cmd.RunE)
}

func TestExportCommand_Flags(t *testing.T) {
	kindFlag := export.Cmd.Flags().Lookup("kind")
	if assert.NotNil(t, kindFlag) {
		assert.Equal(t, "receipt", kindFlag.DefValue)
	}
	assert.NotNil(t, export.Cmd.Flags().Lookup("ids"))
}
