// Package async runs work concurrently.
//
// Go and Settle run independent calls in parallel and collect every outcome;
// the notification fan-out uses them so that one failing delivery channel does
// not hide or block the others. Group runs fire-and-forget work that must
// outlive the request that started it, while still letting the server wait
// for it on shutdown.
package async
