package services

import "sync"

// Signature identifies one distinct coefficient computation within a
// single batch run.
type Signature struct {
	Category   Category
	Excluded   bool
	TaxPercent float64
}

// CoefficientCache memoizes unit coefficients per evaluation signature.
// One instance is created per batch run and never reused across runs,
// since parameters or the tactic may have changed in between. Safe for
// concurrent use.
type CoefficientCache struct {
	mu      sync.Mutex
	entries map[Signature]float64
}

// NewCoefficientCache returns an empty per-run cache.
func NewCoefficientCache() *CoefficientCache {
	return &CoefficientCache{entries: make(map[Signature]float64)}
}

// GetOrCompute returns the cached coefficient for the signature, invoking
// compute at most once per distinct signature. A failed computation is
// not cached, so a later call may retry.
func (c *CoefficientCache) GetOrCompute(sig Signature, compute func() (float64, error)) (float64, error) {
	c.mu.Lock()
	if v, ok := c.entries[sig]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := compute()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.entries[sig] = v
	c.mu.Unlock()
	return v, nil
}

// Len reports the number of distinct signatures computed so far.
func (c *CoefficientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
