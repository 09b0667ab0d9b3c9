// Package server wires the popup host together.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Build the frame tree, from a layout file when one is configured
//  3. Register the popup factory and frame offset actions on the root frame
//  4. Setup HTTP routes, middleware and the cross-frame websocket endpoint
//  5. Serve until shutdown; shutting down marks the host unloaded first so
//     in-flight popup calls fail soft
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logging.NewOrNop(logging.ForHost(cfg)))
//	if err != nil {
//		log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Shutdown(context.Background())
package server
