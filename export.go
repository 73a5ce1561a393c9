package envs

// GetAllByString returns every registered key with its raw value.
func (r *Registry) GetAllByString() map[string]string {
	snap := r.store.Snapshot()
	out := make(map[string]string, len(snap))
	for key, entry := range snap {
		out[key] = entry.Value
	}
	return out
}

// GetAll returns every registered key with its typed value, as Get returns it.
func (r *Registry) GetAll() (map[string]any, error) {
	keys := r.store.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		v, err := r.Get(key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	return r.store.Keys()
}

// TypeOf returns the declared type of key.
func (r *Registry) TypeOf(key string) (Type, bool) {
	entry, ok := r.store.Get(key)
	return entry.Type, ok
}
