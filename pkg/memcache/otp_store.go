// Package mem holds short-lived login state.
package mem

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	ErrOTPNotFound = errors.New("otp not found or expired")
	ErrOTPMismatch = errors.New("otp does not match")
	ErrOTPLocked   = errors.New("too many otp attempts")
)

// OTPEntry is one issued code. Only the hash is kept.
type OTPEntry struct {
	Hash      string
	Email     string
	Attempts  int
	ExpiresAt time.Time
}

type OTPStore interface {
	// Put replaces any code already issued for key.
	Put(key string, entry OTPEntry)

	// Check runs match against the live entry for key. A match consumes the entry
	// (single-use); a miss counts an attempt and drops the entry once the limit is hit.
	Check(key string, match func(OTPEntry) bool) (OTPEntry, error)
}

type OTPCache struct {
	mu          sync.Mutex
	data        *cache.Cache
	maxAttempts int
	now         func() time.Time
}

func NewOTPCache(maxAttempts int) *OTPCache {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &OTPCache{
		data:        cache.New(cache.NoExpiration, time.Minute),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *OTPCache) Put(key string, entry OTPEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Set(key, entry, entry.ExpiresAt.Sub(s.now()))
}

func (s *OTPCache) Check(key string, match func(OTPEntry) bool) (OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data.Get(key)
	if !ok {
		return OTPEntry{}, ErrOTPNotFound
	}
	entry := v.(OTPEntry)
	if !s.now().Before(entry.ExpiresAt) {
		s.data.Delete(key)
		return OTPEntry{}, ErrOTPNotFound
	}

	if match(entry) {
		s.data.Delete(key)
		return entry, nil
	}

	entry.Attempts++
	if entry.Attempts >= s.maxAttempts {
		s.data.Delete(key)
		return entry, ErrOTPLocked
	}
	s.data.Set(key, entry, entry.ExpiresAt.Sub(s.now()))
	return entry, ErrOTPMismatch
}
