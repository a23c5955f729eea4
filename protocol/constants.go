package protocol

// LatestVersion is the newest MCP revision this module speaks.
const LatestVersion = "2025-06-18"

// SupportedVersions lists the MCP revisions accepted during initialize,
// newest first.
var SupportedVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
}

// NegotiateVersion returns the client's requested version when supported,
// falling back to LatestVersion otherwise.
func NegotiateVersion(requested string) string {
	for _, v := range SupportedVersions {
		if v == requested {
			return v
		}
	}
	return LatestVersion
}

// MCP method names.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
)

// SessionHeader carries the session identifier on HTTP exchanges, in both
// directions.
const SessionHeader = "Mcp-Session-Id"
