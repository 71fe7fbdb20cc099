// Package user is the read side of the user directory: existence checks,
// profile lookup and push token resolution for single users or for every user
// matching a query. MongoDirectory reads the users collection; MemoryDirectory
// backs tests.
package user
