package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	data := `[
		{"name": "session", "value": "abc", "domain": ".greenhouse.io", "path": "/", "expires": 1900000000, "httpOnly": true, "secure": true, "sameSite": "Lax"},
		{"name": "pref", "value": "dark"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	full := cookies[0]
	assert.Equal(t, "session", full.Name)
	assert.Equal(t, "abc", full.Value)
	require.NotNil(t, full.Domain)
	assert.Equal(t, ".greenhouse.io", *full.Domain)
	require.NotNil(t, full.HttpOnly)
	assert.True(t, *full.HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, full.SameSite)

	bare := cookies[1]
	assert.Nil(t, bare.Domain)
	assert.Nil(t, bare.Path)
	assert.Nil(t, bare.Expires)
	assert.Nil(t, bare.SameSite)
}

func TestLoadCookiesErrors(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadCookies(path)
	assert.Error(t, err)
}

func TestLoadCookiesFormats(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantExpires  float64
		wantSameSite *playwright.SameSiteAttribute
	}{
		{
			name:         "extension export",
			data:         `[{"name": "gh", "value": "1", "expirationDate": 1900000000.5, "sameSite": "no_restriction"}, {"name": "", "value": "x"}]`,
			wantExpires:  1900000000.5,
			wantSameSite: playwright.SameSiteAttributeNone,
		},
		{
			name:         "storage state",
			data:         `{"cookies": [{"name": "gh", "value": "1", "expires": 1800000000, "sameSite": "strict"}], "origins": []}`,
			wantExpires:  1800000000,
			wantSameSite: playwright.SameSiteAttributeStrict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cookies.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			cookies, err := LoadCookies(path)
			require.NoError(t, err)
			require.Len(t, cookies, 1)
			assert.Equal(t, "gh", cookies[0].Name)
			require.NotNil(t, cookies[0].Expires)
			assert.Equal(t, tt.wantExpires, *cookies[0].Expires)
			assert.Equal(t, tt.wantSameSite, cookies[0].SameSite)
		})
	}
}
