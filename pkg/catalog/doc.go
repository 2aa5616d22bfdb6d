// Package catalog holds decoded scans in an insertion-ordered map keyed by
// scan.Key.
//
// The Store is owned by a single goroutine (the command loop). Bulk renderers
// receive entry snapshots, never the Store itself.
package catalog
