package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pennywise.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.RulesPath)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PENNYWISE_DB", "/tmp/ledger.db")
	t.Setenv("PENNYWISE_ADDR", "127.0.0.1:9000")
	t.Setenv("PENNYWISE_RULES", "/etc/pennywise/rules.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/etc/pennywise/rules.yaml", cfg.RulesPath)
}
