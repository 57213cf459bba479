package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/devterm/pkg/env"
)

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	runtimePath string
	path        string
	err         error
	saved       bool
}

func NewSaveEnvStep(runtimePath string) Step {
	return &SaveEnvStep{runtimePath: runtimePath}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	s.path, s.err = SaveEnv(s.runtimePath, state)
	if s.err != nil {
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return fmt.Sprintf("Configuration saved to %s\n", s.path)
	}
	return "Saving configuration...\n"
}

// SaveEnv writes state to <runtimePath>/.env and returns the file path.
// An existing file is never overwritten.
func SaveEnv(runtimePath string, state *InstallState) (string, error) {
	return saveEnv(runtimePath, state, func(f *os.File, content string) error {
		_, err := f.WriteString(content)
		return err
	})
}

func saveEnv(runtimePath string, state *InstallState, write func(f *os.File, content string) error) (string, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(runtimePath, ".env")

	content, err := env.MarshalEnv(state)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(envPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf(".env file already exists at %s", envPath)
		}
		return "", err
	}
	werr := write(f, content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		// Leave no partial file behind.
		_ = os.Remove(envPath)
		return "", fmt.Errorf("write %s: %w", envPath, werr)
	}
	return envPath, nil
}
