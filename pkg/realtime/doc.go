// Package realtime pushes named events to users over websockets.
//
// Hub keeps the sessions of this process and implements Emitter directly.
// In a multi-instance deployment RedisEmitter is used as the Emitter instead:
// it publishes every event to a Redis channel and each instance runs Relay to
// feed its own Hub.
//
//	hub := realtime.NewHub(cfg)
//	r.Handle("/ws", realtime.NewHandler(hub, resolveUser, cfg))
//	_ = hub.Emit(ctx, userID, "newMessage", msg)
//
// Frames are JSON objects {"event": ..., "payload": ...}. Slow sessions drop
// frames instead of blocking emitters.
package realtime
