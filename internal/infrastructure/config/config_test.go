package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SUPIMPORT_APP_NAME":                os.Getenv("SUPIMPORT_APP_NAME"),
		"SUPIMPORT_APP_ENV":                 os.Getenv("SUPIMPORT_APP_ENV"),
		"SUPIMPORT_APP_PORT":                os.Getenv("SUPIMPORT_APP_PORT"),
		"SUPIMPORT_DATABASE_DRIVER":         os.Getenv("SUPIMPORT_DATABASE_DRIVER"),
		"SUPIMPORT_DATABASE_HOST":           os.Getenv("SUPIMPORT_DATABASE_HOST"),
		"SUPIMPORT_DATABASE_PORT":           os.Getenv("SUPIMPORT_DATABASE_PORT"),
		"SUPIMPORT_DATABASE_USER":           os.Getenv("SUPIMPORT_DATABASE_USER"),
		"SUPIMPORT_DATABASE_PASSWORD":       os.Getenv("SUPIMPORT_DATABASE_PASSWORD"),
		"SUPIMPORT_DATABASE_DBNAME":         os.Getenv("SUPIMPORT_DATABASE_DBNAME"),
		"SUPIMPORT_DATABASE_SSLMODE":        os.Getenv("SUPIMPORT_DATABASE_SSLMODE"),
		"SUPIMPORT_DATABASE_MAX_OPEN_CONNS": os.Getenv("SUPIMPORT_DATABASE_MAX_OPEN_CONNS"),
		"SUPIMPORT_DATABASE_MAX_IDLE_CONNS": os.Getenv("SUPIMPORT_DATABASE_MAX_IDLE_CONNS"),
		"SUPIMPORT_IMPORT_CHUNK_SIZE":       os.Getenv("SUPIMPORT_IMPORT_CHUNK_SIZE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "supplier-import", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "supplier_import", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 1000, cfg.Import.ChunkSize)
		assert.Equal(t, 100, cfg.Import.MaxErrors)
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_APP_NAME", "test-app")
		os.Setenv("SUPIMPORT_APP_PORT", "9000")
		os.Setenv("SUPIMPORT_DATABASE_HOST", "testdb.local")
		os.Setenv("SUPIMPORT_DATABASE_PORT", "5433")
		os.Setenv("SUPIMPORT_DATABASE_USER", "testuser")
		os.Setenv("SUPIMPORT_DATABASE_PASSWORD", "testpass")
		os.Setenv("SUPIMPORT_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SUPIMPORT_IMPORT_CHUNK_SIZE", "500")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 500, cfg.Import.ChunkSize)
	})

	t.Run("supports the sqlite driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "supplier_import.db", cfg.Database.Path)
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SUPIMPORT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SUPIMPORT_APP_ENV":           os.Getenv("SUPIMPORT_APP_ENV"),
		"SUPIMPORT_DATABASE_DRIVER":   os.Getenv("SUPIMPORT_DATABASE_DRIVER"),
		"SUPIMPORT_DATABASE_PASSWORD": os.Getenv("SUPIMPORT_DATABASE_PASSWORD"),
		"SUPIMPORT_DATABASE_SSLMODE":  os.Getenv("SUPIMPORT_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_APP_ENV", "production")
		os.Setenv("SUPIMPORT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_APP_ENV", "production")
		os.Setenv("SUPIMPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SUPIMPORT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite skips postgres production checks", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_APP_ENV", "production")
		os.Setenv("SUPIMPORT_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("SUPIMPORT_APP_ENV", "production")
		os.Setenv("SUPIMPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SUPIMPORT_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "data/import.db"}
		assert.Equal(t, "data/import.db", cfg.DSN())
	})
}
