package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expercise/expercise-interpreter/config"
	"github.com/expercise/expercise-interpreter/logger"
	"github.com/expercise/expercise-interpreter/sandbox"
)

// TestIntegrationConfigLoggerSandbox tests the integration between config, logger, and sandbox packages
func TestIntegrationConfigLoggerSandbox(t *testing.T) {
	t.Run("ConfigAndLoggerIntegration", func(t *testing.T) {
		cfg := &config.Config{
			Server: config.ServerConfig{
				Transport: "http",
				HTTPPort:  8080,
			},
			Logging: config.LoggingConfig{
				Mode:  "development",
				Level: "debug",
			},
			Sandbox: config.SandboxConfig{
				MemoryLimitMB:    32,
				OutputLimitBytes: 1024,
				StdinOpen:        true,
				MountPath:        "/code",
			},
			Languages: map[string]config.Language{
				"python": {Image: "python:3.12-slim", FileName: "code.py", Command: []string{"python", "code.py"}},
			},
		}

		testLogger, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
		require.NoError(t, err)
		require.NotNil(t, testLogger)

		testLogger.Info("Integration test started")
		_ = testLogger.Sync()
	})

	t.Run("UnreachableDaemonFailsServiceConstruction", func(t *testing.T) {
		cfg := &config.Config{
			Logging: config.LoggingConfig{Mode: "development", Level: "debug"},
			Sandbox: config.SandboxConfig{
				// Nothing listens here; the first image pull must fail fast.
				Host:             "tcp://127.0.0.1:1",
				MemoryLimitMB:    32,
				OutputLimitBytes: 1024,
				StdinOpen:        true,
				MountPath:        "/code",
			},
			Languages: map[string]config.Language{
				"python": {Image: "python:3.12-slim", FileName: "code.py", Command: []string{"python", "code.py"}},
			},
		}

		testLogger, err := logger.NewFromConfig(cfg)
		require.NoError(t, err)

		svc, err := sandbox.NewFromConfig(testLogger, cfg)
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.True(t, sandbox.IsInfra(err))
	})
}
