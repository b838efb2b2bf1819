// Package domain defines the MCP tool surface for Shadowrun dice rolls.
//
// Each tool pairs jsonschema-tagged input/output structs with a typed
// handler, so MCP clients get the same parsing rules, edition defaults
// and pool bounds the chat transports enforce.
package domain
