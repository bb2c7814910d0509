// Package pebblestore wraps a Pebble database with the durability policy
// and helpers LiteQueue collections need: point reads and writes, atomic
// batches, prefix iteration, and range compaction.
//
// The fsync policy is fixed at open time. FsyncModeAlways forces a WAL
// sync on every committed batch and is the default for queue data, since
// crash durability is the point of the library. FsyncModeInterval enables
// Pebble's group commit for higher throughput at the cost of a bounded
// window of recent writes on power loss; FsyncModeNever leaves syncing
// entirely to Pebble.
package pebblestore
