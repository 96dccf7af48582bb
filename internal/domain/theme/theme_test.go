package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTheme(t *testing.T) {
	th, err := NewTheme("Midnight Blue", "", "dark", map[string]interface{}{
		"colors": map[string]interface{}{"primary": "#0B1D51"},
	})
	require.NoError(t, err)

	assert.Equal(t, "midnight-blue", th.Slug)
	assert.False(t, th.Active)
	assert.Equal(t, "#0B1D51", th.Settings["colors"].(map[string]interface{})["primary"])
	assert.Contains(t, th.Settings, "typography", "defaults fill missing sections")
}

func TestNewTheme_Validation(t *testing.T) {
	_, err := NewTheme("", "", "", nil)
	assert.ErrorContains(t, err, "name is required")

	_, err = NewTheme("Ok", "Bad Slug", "", nil)
	assert.ErrorContains(t, err, "slug")

	_, err = NewTheme("Ok", "", "", map[string]interface{}{
		"colors": map[string]interface{}{"primary": "blue"},
	})
	assert.ErrorContains(t, err, "Color 'primary'")

	_, err = NewTheme("Ok", "", "", map[string]interface{}{"custom_css": "a{}</style><script>"})
	assert.ErrorContains(t, err, "style element")
}

func TestTheme_UpdateAndDuplicate(t *testing.T) {
	th, err := NewTheme("Classic", "", "", nil)
	require.NoError(t, err)

	settings := DefaultSettings()
	settings["custom_css"] = "body{margin:0}"
	require.NoError(t, th.Update("Classic 2", "v2", "https://cdn/p.png", settings))
	assert.Equal(t, "Classic 2", th.Name)
	assert.Equal(t, 2, th.GetVersion())

	dup, err := th.Duplicate("", "")
	require.NoError(t, err)
	assert.Equal(t, "Classic 2 (copy)", dup.Name)
	assert.Equal(t, "classic-copy", dup.Slug)
	assert.Equal(t, "body{margin:0}", dup.Settings["custom_css"])
	assert.NotEqual(t, th.ID, dup.ID)

	// mutating the copy leaves the original untouched
	dup.Settings["colors"].(map[string]interface{})["primary"] = "#000000"
	assert.Equal(t, "#111827", th.Settings["colors"].(map[string]interface{})["primary"])
}

func TestTheme_CanDelete(t *testing.T) {
	th, err := NewTheme("Classic", "", "", nil)
	require.NoError(t, err)
	assert.NoError(t, th.CanDelete())
	th.Active = true
	assert.ErrorContains(t, th.CanDelete(), "active theme")
}
