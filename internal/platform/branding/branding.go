// Package branding centralizes the user-facing product name.
package branding

// AppName is the product name surfaced across chat transports and MCP.
const AppName = "ShadowSprite"
