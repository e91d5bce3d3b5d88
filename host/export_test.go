package host

const MaxOrigins = maxOrigins

func (res *Resolver) Memoized() int {
	res.mu.RLock()
	defer res.mu.RUnlock()
	return len(res.cache)
}
