// Package mcp exposes gateway sessions as an MCP tool over stdio.
package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/sandevgo/devterm/pkg/log"
)

const toolDeviceCommand = "device_command"

type Server struct {
	gateway *gateway.Gateway
	mcp     *server.MCPServer
}

func NewServer(gw *gateway.Gateway) *Server {
	s := &Server{
		gateway: gw,
		mcp: server.NewMCPServer(
			core.DevtermName,
			core.DevtermVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool(toolDeviceCommand,
		mcp.WithDescription("Run one CLI command on a network device and return the terminal reply, "+
			"including the device prompt. Errors from the device are reported in the reply text prefixed with '% '."),
		mcp.WithString("device_id",
			mcp.Required(),
			mcp.Description("Device identifier. The reserved sandbox identifier reaches a real NX-OS switch, any other is simulated."),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("CLI command line, e.g. 'show version'."),
		),
	), s.handleDeviceCommand)

	return s
}

// Serve speaks MCP on in/out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log.FromCtx(ctx).Info().Str("tool", toolDeviceCommand).Msg("mcp stdio server started")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// Every call runs in a fresh session bound to the given device.
func (s *Server) handleDeviceCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := request.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess := s.gateway.Open(deviceID)
	ctx = log.WithFields(ctx, "session", sess.ID.String(), "device", deviceID)

	reply, err := sess.Respond(ctx, command)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(reply), nil
}
