package seniors

import "time"

// ListCache caches the plain (unfiltered, first-page) list per barangay for
// the dashboard view.
type ListCache interface {
	GetByBarangay(barangayCode string) ([]Senior, int64, bool)
	SetByBarangay(barangayCode string, items []Senior, total int64, ttl time.Duration)
	DeleteByBarangay(barangayCode string)
}

type noopListCache struct{}

func (noopListCache) GetByBarangay(string) ([]Senior, int64, bool) {
	return nil, 0, false
}

func (noopListCache) SetByBarangay(string, []Senior, int64, time.Duration) {}

func (noopListCache) DeleteByBarangay(string) {}
