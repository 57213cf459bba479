package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	runtime := t.TempDir()
	t.Setenv("DEVTERM_RUNTIME_PATH", runtime)

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, runtime, cfg.GetRuntimePath())
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "real-san-device", cfg.ReservedDeviceID)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsSSHSelected())
	assert.Equal(t, filepath.Join(runtime, ".env"), cfg.GetEnvPath())
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	t.Setenv("DEVTERM_RUNTIME_PATH", t.TempDir())
	t.Setenv("DEVTERM_RESERVED_DEVICE", "lab-nexus")
	t.Setenv("DEVTERM_ALLOWED_ORIGINS", "http://a.local,http://b.local")
	t.Setenv("DEVTERM_ENABLE_SSH", "true")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "lab-nexus", cfg.ReservedDeviceID)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsSSHSelected())
}

func TestLoadAppConfig_RelativeRuntimePathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DEVTERM_RUNTIME_PATH", ".gw")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gw"), cfg.GetRuntimePath())
}

func TestLoadNXAPIConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadNXAPIConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://sbx-nxos-mgmt.cisco.com/ins", cfg.Endpoint)
		assert.Equal(t, "admin", cfg.Username)
		assert.Equal(t, 15*time.Second, cfg.Timeout)
		assert.True(t, cfg.Insecure)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("NXAPI_ENDPOINT", "https://10.1.1.1/ins")
		t.Setenv("NXAPI_PASSWORD", "secret")
		t.Setenv("NXAPI_TIMEOUT", "3s")
		t.Setenv("NXAPI_INSECURE", "false")

		cfg, err := LoadNXAPIConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://10.1.1.1/ins", cfg.Endpoint)
		assert.Equal(t, "secret", cfg.Password)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.False(t, cfg.Insecure)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv("NXAPI_TIMEOUT", "soon")
		_, err := LoadNXAPIConfig()
		require.Error(t, err)
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Setenv("NXAPI_TIMEOUT", "0s")
		_, err := LoadNXAPIConfig()
		require.Error(t, err)
	})
}

func TestLoadSSHConfig_HostKeyDefaultsToRuntime(t *testing.T) {
	runtime := t.TempDir()

	cfg, err := LoadSSHConfig(runtime)
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.ListenAddr)
	assert.Equal(t, filepath.Join(runtime, "ssh_host_ed25519"), cfg.HostKeyPath)
	assert.Empty(t, cfg.Password)
}
