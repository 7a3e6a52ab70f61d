package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Revocations is a bounded in-process denylist of token ids. Entries live at
// most as long as a token can, so the list never holds dead ids for long.
// Once full, the oldest revocation is evicted and that token becomes usable
// again until it expires.
type Revocations struct {
	cache *expirable.LRU[string, time.Time]
}

func NewRevocations(capacity int, tokenTTL time.Duration) *Revocations {
	return &Revocations{cache: expirable.NewLRU[string, time.Time](capacity, nil, tokenTTL)}
}

// Revoke denies tokenID until expiresAt.
func (r *Revocations) Revoke(tokenID string, expiresAt time.Time) {
	if tokenID == "" || !time.Now().Before(expiresAt) {
		return
	}
	r.cache.Add(tokenID, expiresAt)
}

func (r *Revocations) Revoked(tokenID string) bool {
	exp, ok := r.cache.Get(tokenID)
	return ok && time.Now().Before(exp)
}

func (r *Revocations) Len() int { return r.cache.Len() }
