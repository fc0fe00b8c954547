package brokercache

// LastWillView adapts Cache's internal LastWill resource to
// delaytask.LastWillStore's shape.
type LastWillView struct{ cache *Cache }

// LastWills returns a view over the cache's last-will payloads.
func (c *Cache) LastWills() LastWillView { return LastWillView{cache: c} }

// GetLastWill looks up a client's pending last-will payload, if any.
func (v LastWillView) GetLastWill(clientID string) ([]byte, bool, error) {
	data, ok := v.cache.Get(resourceLastWill, clientID)
	return data, ok, nil
}

// SetLastWill stores a client's last-will payload, to be delivered on
// session expiry.
func (v LastWillView) SetLastWill(clientID string, payload []byte) {
	v.cache.Set(resourceLastWill, clientID, payload)
}

// DeleteLastWill removes a client's last-will payload once delivered.
func (v LastWillView) DeleteLastWill(clientID string) error {
	v.cache.Delete(resourceLastWill, clientID)
	return nil
}
