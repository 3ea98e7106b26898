package greenhouse

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultHost    = "greenhouse.io"
	DefaultBaseURL = "https://boards.greenhouse.io"
)

// Source is the Greenhouse job board
type Source struct {
	hosts []string
	base  *url.URL
}

// NewSource accepts listing URLs on any of hosts or their subdomains and
// resolves relative job links against baseURL
func NewSource(hosts []string, baseURL string) (*Source, error) {
	if len(hosts) == 0 {
		hosts = []string{DefaultHost}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			normalized = append(normalized, h)
		}
	}
	return &Source{hosts: normalized, base: base}, nil
}

func (s *Source) Name() string {
	return "greenhouse"
}

func (s *Source) Accepts(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range s.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// ResolveURL keeps absolute http(s) links and joins relative ones to the
// board's base URL
func (s *Source) ResolveURL(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty job link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid job link %q: %w", href, err)
	}
	if ref.IsAbs() {
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return "", fmt.Errorf("unsupported job link scheme %q", ref.Scheme)
		}
		return ref.String(), nil
	}
	if ref.Host != "" {
		ref.Scheme = s.base.Scheme
		return ref.String(), nil
	}
	return s.base.ResolveReference(ref).String(), nil
}
