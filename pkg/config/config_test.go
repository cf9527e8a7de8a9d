package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/incrbackup/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.MatchName, cfg.Backup.Match)
	assert.False(t, cfg.Backup.AutoConfirm)
	assert.Equal(t, DefaultLogPath, cfg.Logging.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{name: "BadMatch", modify: func(c *Config) { c.Backup.Match = "fuzzy" }, field: "backup.match"},
		{name: "SmallBuffer", modify: func(c *Config) { c.Backup.BufferSize = 10 }, field: "backup.buffer_size"},
		{name: "BadBandwidth", modify: func(c *Config) { c.Backup.BandwidthLimit = "fast" }, field: "backup.bandwidth_limit"},
		{name: "BadOutput", modify: func(c *Config) { c.Output.Format = "xml" }, field: "output.format"},
		{name: "BadLogFormat", modify: func(c *Config) { c.Logging.Format = "xml" }, field: "logging.format"},
		{name: "BadLogLevel", modify: func(c *Config) { c.Logging.Level = "trace" }, field: "logging.level"},
		{name: "MissingLogPath", modify: func(c *Config) { c.Logging.Path = "" }, field: "logging.path"},
		{name: "BadMaxSize", modify: func(c *Config) { c.Logging.MaxSize = "big" }, field: "logging.max_size"},
		{name: "NegativeBackups", modify: func(c *Config) { c.Logging.MaxBackups = -1 }, field: "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			var verr *models.ValidationError
			require.True(t, errors.As(cfg.Validate(), &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("DisabledLoggingNeedsNoPath", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Enabled = false
		cfg.Logging.Path = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("EmptyMatchDefaults", func(t *testing.T) {
		cfg := Default()
		cfg.Backup.Match = ""
		require.NoError(t, cfg.Validate())
		assert.Equal(t, models.MatchName, cfg.Backup.Match)
	})
}

func TestMaxSizeBytes(t *testing.T) {
	size, err := LoggingConfig{MaxSize: "10MB"}.MaxSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), size)

	size, err = LoggingConfig{}.MaxSizeBytes()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Backup.SourceRoot = "/data/photos"
	cfg.Backup.DestRoot = "/mnt/backup"
	cfg.Backup.AutoConfirm = true
	cfg.Backup.Match = models.MatchPath
	cfg.Logging.Path = "/var/log/incrbackup.log"
	cfg.Exclude = []string{"*.tmp"}

	require.NoError(t, SaveToFile(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "source_root: /data/photos"))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backup:\n  source_root: /src\n"), 0644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/src", cfg.Backup.SourceRoot)
		assert.Equal(t, 65536, cfg.Backup.BufferSize)
		assert.Equal(t, "human", cfg.Output.Format)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backup:\n  match: fuzzy\n"), 0644))

		_, err := LoadFromFile(path)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backup: [\n"), 0644))

		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	homedirNoCache(t)

	got, err := ExpandPath("~/logs/backup.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", "logs", "backup.log"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func homedirNoCache(t *testing.T) {
	t.Helper()
	prev := homedir.DisableCache
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = prev })
}
