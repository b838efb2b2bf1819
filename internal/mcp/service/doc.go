// Package service wires the MCP protocol transport to the dice tools.
//
// It is the transport adapter layer: the package knows how to run MCP
// over stdio and delegates tool meaning to the domain handlers.
package service
