package root_test

import (
	"testing"

	"fjacquet/receipt-ledger/cmd/root"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "receipt-ledger", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Yayoi")
	assert.Contains(t, root.Cmd.Long, "learning rules")
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	if root.Cmd.PersistentFlags().Lookup("data-dir") == nil {
		root.Init()
	}

	dataDir := root.Cmd.PersistentFlags().Lookup("data-dir")
	if assert.NotNil(t, dataDir) {
		assert.Equal(t, "D", dataDir.Shorthand)
	}
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("log-level"))
}

func TestContainer_BeforeSetup(t *testing.T) {
	_, err := root.Container()
	assert.Error(t, err)
	assert.NotNil(t, root.GetLogger())
}
