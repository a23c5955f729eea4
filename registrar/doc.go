// Package registrar binds server factories to entry points.
//
// A Registrar maps handles to Factory functions. Local handles launch a
// server over stdio; web routes serve one HTTP exchange per request and
// WebSocket routes serve one session per connection. Registration is pure:
// nothing is constructed until an entry point is invoked, and each
// invocation builds, starts and runs a fresh server.
//
//	reg := registrar.New()
//	reg.Local("demo", newDemoServer)
//	reg.Web("/mcp", newDemoServer)
//
//	mux := http.NewServeMux()
//	reg.Mount(mux)
//	registrar.OAuthRoutes(mux, "https://example.com", "oauth")
package registrar
