// Package cache provides a generic thread-safe LRU map with an eviction hook.
//
// The realtime hub keeps one broadcaster per connected user in an LRU so that
// memory stays bounded; the eviction hook closes the evicted broadcaster and
// with it every subscription of that user.
package cache
