// Package wsframe carries crossframe calls over a websocket.
//
// A Handler mounted on the host accepts connections from frames and serves
// "invoke" envelopes against a crossframe.Invoker. A Client dialed by a frame
// implements crossframe.Invoker on top of the connection, so code written
// against the in-process Hub works unchanged across processes.
//
// Envelopes are JSON objects:
//
//	{"id": "...", "kind": "invoke", "target": 0, "action": "PopupFactory.hide", "params": {...}}
//	{"id": "...", "kind": "response", "result": ...}
//	{"id": "...", "kind": "response", "error": "..."}
package wsframe
