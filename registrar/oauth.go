package registrar

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Well-known discovery paths served by OAuthRoutes.
const (
	ProtectedResourcePath   = "/.well-known/oauth-protected-resource"
	AuthorizationServerPath = "/.well-known/oauth-authorization-server"
)

// ProtectedResourceMetadata is the protected resource discovery document.
type ProtectedResourceMetadata struct {
	Resource            string `json:"resource"`
	AuthorizationServer string `json:"authorization_server"`
}

// AuthorizationServerMetadata is the authorization server discovery
// document. The endpoints themselves belong to the surrounding
// application.
type AuthorizationServerMetadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
}

// NewAuthorizationServerMetadata describes an authorization server at
// baseURL whose endpoints live under prefix ("oauth" when empty).
func NewAuthorizationServerMetadata(baseURL, prefix string) AuthorizationServerMetadata {
	if prefix == "" {
		prefix = "oauth"
	}
	return AuthorizationServerMetadata{
		Issuer:                        baseURL,
		AuthorizationEndpoint:         joinURL(baseURL, prefix, "authorize"),
		TokenEndpoint:                 joinURL(baseURL, prefix, "token"),
		RegistrationEndpoint:          joinURL(baseURL, prefix, "register"),
		ResponseTypesSupported:        []string{"code"},
		CodeChallengeMethodsSupported: []string{"S256"},
		GrantTypesSupported:           []string{"authorization_code", "refresh_token"},
	}
}

// OAuthRoutes registers the two OAuth discovery documents on router.
func OAuthRoutes(router Router, baseURL, prefix string) {
	resource := ProtectedResourceMetadata{
		Resource:            baseURL,
		AuthorizationServer: joinURL(baseURL, AuthorizationServerPath),
	}
	router.Handle(ProtectedResourcePath, jsonDocument(resource))
	router.Handle(AuthorizationServerPath, jsonDocument(NewAuthorizationServerMetadata(baseURL, prefix)))
}

func jsonDocument(v any) http.Handler {
	body, _ := json.Marshal(v)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			out += "/" + p
		}
	}
	return out
}
