package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ScanAndValue(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"color":"red","sizes":[1,2]}`)))
	assert.Equal(t, "red", m["color"])

	v, err := m.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"red","sizes":[1,2]}`, v.(string))

	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	assert.Error(t, m.Scan(42))
}

func TestJSONMap_CloneIsDeep(t *testing.T) {
	orig := JSONMap{"nested": map[string]interface{}{"a": "b"}, "list": []interface{}{"x"}}
	clone := orig.Clone()
	clone["nested"].(map[string]interface{})["a"] = "changed"
	clone["list"].([]interface{})[0] = "y"

	assert.Equal(t, "b", orig["nested"].(map[string]interface{})["a"])
	assert.Equal(t, "x", orig["list"].([]interface{})[0])
}

func TestStringList_ScanAndValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["a.png","b.png"]`))
	assert.Equal(t, StringList{"a.png", "b.png"}, l)

	var empty StringList
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
