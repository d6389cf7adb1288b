package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigManagerAt_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsecc", "config.json")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cm.GetConfig())
	assert.FileExists(t, path)

	// Reloading reads the saved file
	cm2, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, cm.GetConfig(), cm2.GetConfig())
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("defaults:\n  symbols: 32\n  workers: 4\nui:\n  use_color: false\n")
	require.NoError(t, os.WriteFile(path, data, 0600))

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	assert.Equal(t, 32, cfg.Defaults.Symbols)
	assert.Equal(t, 4, cfg.Defaults.Workers)
	assert.False(t, cfg.UI.UseColor)
	// Unset keys keep their defaults
	assert.Equal(t, "raw", cfg.Defaults.OutputFormat)
	assert.Equal(t, "0644", cfg.Storage.FilePermissions)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewConfigManagerAt(path)
	assert.Error(t, err)
}

func TestSaveConfig_YAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	cfg.Defaults.Symbols = 20
	cfg.Storage.WriteManifest = true
	require.NoError(t, cm.SaveConfig())

	cm2, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cm2.GetConfig().Defaults.Symbols)
	assert.True(t, cm2.GetConfig().Storage.WriteManifest)
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	cm, err := NewConfigManagerAt(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	require.NoError(t, cm.AddProfile(&Profile{
		Name:  "radio",
		Codec: reedsolomon.Config{Symbols: 32},
	}))
	require.NoError(t, cm.AddProfile(&Profile{
		Name:  "archive",
		Codec: reedsolomon.Config{Symbols: 64, Workers: 8},
	}))

	err = cm.AddProfile(&Profile{Name: "broken", Codec: reedsolomon.Config{Symbols: 400}})
	assert.ErrorIs(t, err, reedsolomon.ErrInvalidSymbols)
	assert.Error(t, cm.AddProfile(&Profile{}))

	profiles := cm.ListProfiles()
	require.Len(t, profiles, 2)
	assert.Equal(t, "archive", profiles[0].Name)
	assert.Equal(t, "radio", profiles[1].Name)

	// Profiles persist next to the config file
	cm2, err := NewConfigManagerAt(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	p, err := cm2.GetProfile("archive")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Codec.Workers)

	require.NoError(t, cm2.DeleteProfile("archive"))
	_, err = cm2.GetProfile("archive")
	assert.Error(t, err)
	assert.Error(t, cm2.DeleteProfile("archive"))
}

func TestApplyDefaults(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cm.GetConfig().Defaults.Symbols = 16
	cm.GetConfig().Defaults.Workers = 3

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var codec reedsolomon.Config
	flags.IntVar(&codec.Symbols, "symbols", 10, "")
	flags.IntVar(&codec.Workers, "workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--symbols", "0"}))

	cm.ApplyDefaults(&codec, flags)
	assert.Equal(t, 0, codec.Symbols, "explicit flag wins, even when zero")
	assert.Equal(t, 3, codec.Workers)

	var fromNil reedsolomon.Config
	cm.ApplyDefaults(&fromNil, nil)
	assert.Equal(t, 16, fromNil.Symbols)
	require.NoError(t, cm.ValidateConfig(&fromNil))
}

func TestFileMode(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	mode, err := cm.FileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), mode)

	cm.GetConfig().Storage.FilePermissions = "0600"
	mode, err = cm.FileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), mode)

	cm.GetConfig().Storage.FilePermissions = "rw-r--r--"
	_, err = cm.FileMode()
	assert.Error(t, err)

	codec := reedsolomon.Config{Symbols: 4}
	assert.Error(t, cm.ValidateConfig(&codec))
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("RSECC_CONFIG", "/tmp/custom.yaml")
	path, err := getConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)

	t.Setenv("RSECC_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err = getConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "rsecc", "config.json"), path)
}
