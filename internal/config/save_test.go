package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/coordsys/internal/flags"
)

func loadFlags(t *testing.T, configPath string) map[string]bool {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg.Flags
}

func TestSaveFlag_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveFlag(configPath, flags.FlagStrictDefaults, true))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "strict-defaults: true")
	require.Equal(t, map[string]bool{flags.FlagStrictDefaults: true}, loadFlags(t, configPath))
}

func TestSaveFlag_UpdatesTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	require.NoError(t, SaveFlag(configPath, flags.FlagPathCache, false))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "ttl_seconds: 600")
	require.Contains(t, content, "# Read-through cache of resolved mapping paths")
	require.Equal(t,
		map[string]bool{flags.FlagPathCache: false, flags.FlagStrictDefaults: false},
		loadFlags(t, configPath))
}

func TestSaveFlag_AddsFlagsSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("db_path: /data/coordsys.db\n"), 0o600))

	require.NoError(t, SaveFlag(configPath, flags.FlagPathCache, true))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "db_path: /data/coordsys.db")
	require.Equal(t, map[string]bool{flags.FlagPathCache: true}, loadFlags(t, configPath))
}

func TestSaveFlag_EmptyFlagsSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("flags:\n"), 0o600))

	require.NoError(t, SaveFlag(configPath, flags.FlagStrictDefaults, true))

	require.Equal(t, map[string]bool{flags.FlagStrictDefaults: true}, loadFlags(t, configPath))
}

func TestSaveFlag_RejectsUnknownFlag(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveFlag(configPath, "no-such-flag", true)
	require.Error(t, err)
	_, statErr := os.Stat(configPath)
	require.True(t, os.IsNotExist(statErr), "nothing is written")
}

func TestSaveFlag_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("flags: [unclosed\n"), 0o600))

	err := SaveFlag(configPath, flags.FlagPathCache, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}
