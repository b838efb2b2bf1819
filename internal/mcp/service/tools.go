package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/scarglamour/ShadowSprite/internal/mcp/domain"
)

// registerRollTools binds the Shadowrun dice tools onto the server.
func registerRollTools(server *mcp.Server, seed func() (int64, error)) {
	mcp.AddTool(server, domain.RollDiceTool(), domain.RollDiceHandler(seed))
	mcp.AddTool(server, domain.ParseRollTool(), domain.ParseRollHandler())
	mcp.AddTool(server, domain.ThresholdTableTool(), domain.ThresholdTableHandler())
}
