// Package http provides the HTTP handlers of the popup host.
//
// Endpoints:
//   - Health: / and /health
//   - Popups: GET /popups, POST /popups, GET /popups/:id
//   - Frames: GET /frames
//
// Example Usage:
//
//	handlers := http.NewHandlers(factory, hub, tree, lifecycle)
//	router.GET("/health", handlers.Health)
//	router.GET("/popups/:id", handlers.GetPopup)
package http
