// Package mongo holds MongoDB connection management and the listing helpers
// shared by every document store.
//
// Connection: New and NewWithDatabase connect with retries, Healthcheck wraps
// a ping for readiness probes, EnsureIndexes creates collection indexes at
// startup.
//
// Listing: every store returns a Page built by Paginate, which appends a
// newest-first sort and a $facet stage to the caller's match/lookup stages:
//
//	page, err := mongo.Paginate[Notification](ctx, coll,
//		mongo.Pipeline{{{Key: "$match", Value: bson.M{"user": userID}}}},
//		mongo.PageParams{Page: 2, Limit: 20}, "createdAt")
//
// Page 1 and limit 10 are used when the caller passes zero values. An empty
// result is always {data: [], totalCount: 0, totalPages: 0}.
package mongo
