package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskpilot/taskpilot/internal/errors"
)

// decode unmarshals MCP request arguments into a typed request struct.
// Malformed arguments become an INVALID_INPUT error so handlers can return
// it to the client unchanged.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidInput("arguments are not valid JSON: " + err.Error())
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidInput("arguments do not match the tool schema: " + err.Error())
	}
	return result, nil
}
