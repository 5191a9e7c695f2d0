package ports

// KeyValueStore is the durable, synchronous persistence boundary used by the
// local entity store. Values are JSON documents. Implementations must survive
// process restarts and bound their own I/O time.
type KeyValueStore interface {
	// Get returns ok=false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(key string) error
}
