package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Cookie is one entry of a cookie file. Both extension exports (expirationDate,
// no_restriction) and Playwright storage state (expires, None) are accepted.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	Expires        float64 `json:"expires"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
	SameSite       string  `json:"sameSite"`
}

type storageState struct {
	Cookies []Cookie `json:"cookies"`
}

// LoadCookies reads the cookie file at path, either a JSON array or a storage
// state object. Entries without a name are skipped.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var entries []Cookie
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var state storageState
		if err := json.Unmarshal(trimmed, &state); err != nil {
			return nil, fmt.Errorf("parse cookies %s: %w", path, err)
		}
		entries = state.Cookies
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cookies %s: %w", path, err)
	}

	out := make([]playwright.OptionalCookie, 0, len(entries))
	for _, c := range entries {
		if c.Name == "" {
			continue
		}
		out = append(out, c.ToPlaywright())
	}
	return out, nil
}

func (c Cookie) expiry() float64 {
	if c.Expires > 0 {
		return c.Expires
	}
	return c.ExpirationDate
}

func sameSite(v string) *playwright.SameSiteAttribute {
	switch strings.ToLower(v) {
	case "lax":
		return playwright.SameSiteAttributeLax
	case "strict":
		return playwright.SameSiteAttributeStrict
	case "none", "no_restriction":
		return playwright.SameSiteAttributeNone
	}
	return nil
}

// ToPlaywright converts c. Zero attributes stay nil so Playwright applies its own defaults.
func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	oc := playwright.OptionalCookie{Name: c.Name, Value: c.Value, SameSite: sameSite(c.SameSite)}
	if c.Domain != "" {
		oc.Domain = playwright.String(c.Domain)
	}
	if c.Path != "" {
		oc.Path = playwright.String(c.Path)
	}
	if exp := c.expiry(); exp > 0 {
		oc.Expires = playwright.Float(exp)
	}
	if c.HTTPOnly {
		oc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		oc.Secure = playwright.Bool(true)
	}
	return oc
}
