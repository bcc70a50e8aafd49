// Package lookup caches the cacheable transit queries in front of a zhbus
// client.
//
// Station lists and line lookups are read-through cached in a Store: an
// in-memory LRU (MemoryStore) or Redis (RedisStore). Real-time status always
// goes to the upstream service.
package lookup
