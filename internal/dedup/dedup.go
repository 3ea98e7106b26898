package dedup

import (
	"net/url"
	"strings"
	"sync"
)

// URLSet remembers which job URLs a run has already queued
type URLSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add records u and reports whether it was new.
// Mutex is required because several listing pages report URLs concurrently.
func (s *URLSet) Add(u string) bool {
	key := Key(u)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Filter returns the URLs not seen before, keeping their order
func (s *URLSet) Filter(urls []string) []string {
	fresh := make([]string, 0, len(urls))
	for _, u := range urls {
		if s.Add(u) {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

// Key is the comparison form of a URL: lower-case scheme and host, no
// fragment and no trailing slash
func Key(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
