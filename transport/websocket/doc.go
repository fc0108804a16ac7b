// Package websocket pushes world snapshots to browser and desktop viewers.
//
// A single Hub owns every connection. The fixed-rate tick loop and the REST
// handlers hand it snapshots through BroadcastSnapshot, which never blocks:
// when the queue is full the update is dropped and the next tick carries a
// fresher one.
//
// Message Protocol:
//
// Each frame is one JSON Message:
//
//	{"world_id": "...", "event": "snapshot", "snapshot": {...}, "events": [...]}
//
// Other events are "new_world" and "camera". Clients do not send commands over
// the socket; input goes through PUT /api/world/input.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Concurrency:
//
// The client set is only read and written by the Run goroutine. Each
// connection gets a read pump and a write pump goroutine.
package websocket
