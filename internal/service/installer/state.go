package installer

import "github.com/sandevgo/devterm/internal/config"

// InstallState is written to .env as-is; empty fields are left out so the
// config defaults apply.
type InstallState struct {
	Endpoint         string `env:"NXAPI_ENDPOINT"`
	Username         string `env:"NXAPI_USERNAME"`
	Password         string `env:"NXAPI_PASSWORD"`
	ReservedDeviceID string `env:"DEVTERM_RESERVED_DEVICE"`
	EnableSSH        bool   `env:"DEVTERM_ENABLE_SSH"`
	SSHPassword      string `env:"SSH_PASSWORD"`
}

// NewInstallState prefills answers from the current environment and the
// config defaults.
func NewInstallState() *InstallState {
	st := &InstallState{}
	if nx, err := config.LoadNXAPIConfig(); err == nil {
		st.Endpoint = nx.Endpoint
		st.Username = nx.Username
	}
	if app, err := config.LoadAppConfig(); err == nil {
		st.ReservedDeviceID = app.ReservedDeviceID
	}
	return st
}
