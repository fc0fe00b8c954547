package brokercache

// SessionView adapts Cache's Session resource to delaytask.SessionCache's
// shape, so Cache.Sessions() can be passed where that interface is
// expected without brokercache importing delaytask.
type SessionView struct{ cache *Cache }

// Sessions returns a view over the cache's Session resource.
func (c *Cache) Sessions() SessionView { return SessionView{cache: c} }

// GetSession looks up a client's cached session, if any.
func (v SessionView) GetSession(clientID string) ([]byte, bool) {
	return v.cache.Get(ResourceSession, clientID)
}

// DeleteSession removes a client's cached session.
func (v SessionView) DeleteSession(clientID string) {
	v.cache.Delete(ResourceSession, clientID)
}
