// Package notification stores per-user notifications and fans a single
// event out over push, realtime and stored-record channels.
//
// A delivery is described by a Plan built with NewPlan, which rejects plans a
// channel could not deliver:
//
//	plan, err := notification.NewPlan(notification.ToUser(uid),
//		notification.Push{Title: "New Message", Body: text},
//		notification.Realtime{Event: "newMessage", Payload: msg},
//		notification.Record{Type: notification.TypeMessage, Message: &msg.ID},
//	)
//	if err != nil {
//		return err
//	}
//	err = notifier.Notify(ctx, plan)
//
// Notify runs the channels concurrently. A failure in one channel is logged
// with its channel name and returned in a joined error; the others still run.
package notification
