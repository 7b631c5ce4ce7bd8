package domain

import "time"

// CacheStatus describes the local rule cache directory.
type CacheStatus struct {
	Dir       string    `json:"dir"`
	Exists    bool      `json:"exists"`
	Entries   int       `json:"entries"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Expired   bool      `json:"expired"`
}

// IsCacheExpired reports whether a cache created at createdAt is past its TTL.
func IsCacheExpired(createdAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(createdAt) > ttl
}
