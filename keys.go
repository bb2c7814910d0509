package litequeue

import "encoding/binary"

// Collection keyspace, all under col/{name}/:
//
//	rec/{id}  - msgpack-encoded Entry, id as 8 bytes big-endian
//	meta      - lastID (8B BE) | count (8B BE)
//
// Identifiers are encoded fixed-width big-endian so that byte order of the
// record keys equals numeric order of the identifiers.
const (
	prefixRecord = "rec/"
	suffixMeta   = "meta"
)

func collectionPrefix(name string) string {
	return "col/" + name + "/"
}

// recordKey returns the key for one record.
// Format: col/{name}/rec/{id:8B BE}
func recordKey(name string, id uint64) []byte {
	prefix := collectionPrefix(name) + prefixRecord
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], id)
	return key
}

// recordPrefix returns the prefix under which all records of a collection
// live.
func recordPrefix(name string) []byte {
	return []byte(collectionPrefix(name) + prefixRecord)
}

// metaKey returns the key of the collection metadata record.
// Format: col/{name}/meta
func metaKey(name string) []byte {
	return []byte(collectionPrefix(name) + suffixMeta)
}

// keyRange returns the inclusive lower and exclusive upper bound for
// scanning everything under prefix.
func keyRange(prefix []byte) (lo, hi []byte) {
	lo = prefix
	hi = make([]byte, len(prefix)+1)
	copy(hi, prefix)
	hi[len(prefix)] = 0xFF
	return lo, hi
}

// idFromRecordKey extracts the identifier from a record key.
func idFromRecordKey(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
