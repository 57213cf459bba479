package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	const reserved = "real-san-device"

	tests := []struct {
		name     string
		deviceID string
		want     string
	}{
		{name: "reserved device", deviceID: reserved, want: "nx-sandbox# "},
		{name: "hyphenated id", deviceID: "sw1-edge", want: "sw1# "},
		{name: "prefix is lowered", deviceID: "CORE-01", want: "core# "},
		{name: "only first hyphen counts", deviceID: "Leaf-a-b", want: "leaf# "},
		{name: "leading hyphen", deviceID: "-edge", want: "# "},
		{name: "no hyphen falls back", deviceID: "router", want: "switch# "},
		{name: "empty id falls back", deviceID: "", want: "switch# "},
		{name: "reserved is case sensitive", deviceID: "REAL-SAN-DEVICE", want: "real# "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prompt(tt.deviceID, reserved))
		})
	}
}
