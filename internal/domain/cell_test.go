package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("censored value is halved", func(t *testing.T) {
		v, ok := Normalize("<0.2")
		require.True(t, ok)
		assert.Equal(t, 0.1, v)
	})

	t.Run("censored with space", func(t *testing.T) {
		v, ok := Normalize("< 1.0")
		require.True(t, ok)
		assert.Equal(t, 0.5, v)
	})

	t.Run("plain numeric string", func(t *testing.T) {
		v, ok := Normalize("0.2")
		require.True(t, ok)
		assert.Equal(t, 0.2, v)
	})

	t.Run("number", func(t *testing.T) {
		v, ok := Normalize(7.4)
		require.True(t, ok)
		assert.Equal(t, 7.4, v)
	})

	t.Run("integer", func(t *testing.T) {
		v, ok := Normalize(3)
		require.True(t, ok)
		assert.Equal(t, 3.0, v)
	})

	t.Run("nil is absent", func(t *testing.T) {
		_, ok := Normalize(nil)
		assert.False(t, ok)
	})

	t.Run("unparsable string is absent", func(t *testing.T) {
		_, ok := Normalize("abc")
		assert.False(t, ok)
	})

	t.Run("censored with invalid remainder is absent", func(t *testing.T) {
		_, ok := Normalize("<abc")
		assert.False(t, ok)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		v, ok := Normalize("<0.1 ")
		require.True(t, ok)
		assert.Equal(t, 0.05, v)
		assert.Equal(t, CellCensored, ParseCell(" <0.1 ").Kind)
	})

	t.Run("trailing units are absent rather than truncated", func(t *testing.T) {
		for _, raw := range []string{"7.2 mg", "7.2mg/L", "<0.1 MPN", "6.5-7.0"} {
			_, ok := Normalize(raw)
			assert.False(t, ok, "raw %q", raw)
			assert.Equal(t, raw, ParseCell(raw).Raw)
		}
	})

	t.Run("empty string is absent", func(t *testing.T) {
		_, ok := Normalize("   ")
		assert.False(t, ok)
	})

	t.Run("non-finite number is absent", func(t *testing.T) {
		_, ok := Normalize(math.Inf(1))
		assert.False(t, ok)
		_, ok = Normalize(math.NaN())
		assert.False(t, ok)
		_, ok = Normalize("Inf")
		assert.False(t, ok)
	})

	t.Run("unsupported type is absent", func(t *testing.T) {
		_, ok := Normalize(true)
		assert.False(t, ok)
		_, ok = Normalize(map[string]any{"Jan": 1})
		assert.False(t, ok)
	})
}

func TestNormalize_IdempotentOnOwnOutput(t *testing.T) {
	for _, raw := range []any{"<0.2", "7.25", 8.0, "<1.0", 0.0, "-3.5"} {
		first, ok := Normalize(raw)
		require.True(t, ok, "raw %v", raw)
		second, ok := Normalize(first)
		require.True(t, ok)
		assert.Equal(t, first, second, "raw %v", raw)
	}
}

func TestParseCell_Kinds(t *testing.T) {
	assert.Equal(t, CellNumber, ParseCell("7.1").Kind)
	assert.Equal(t, CellCensored, ParseCell("<0.1").Kind)
	assert.Equal(t, CellMissing, ParseCell(nil).Kind)
	assert.Equal(t, CellMissing, ParseCell("n/a").Kind)
	assert.Equal(t, "n/a", ParseCell("n/a").Raw)

	c := CensoredCell(0.4)
	v, ok := c.Float()
	require.True(t, ok)
	assert.Equal(t, 0.2, v)
	assert.Equal(t, "<0.4", c.Raw)

	assert.Equal(t, Missing, NumberCell(math.Inf(-1)))
	assert.Equal(t, "censored", CellCensored.String())
}

func TestCell_JSON(t *testing.T) {
	var cells map[string]Cell
	require.NoError(t, json.Unmarshal([]byte(`{"a":7.4,"b":"<0.1","c":null,"d":"8","e":"n/a","f":{"x":1}}`), &cells))

	assert.Equal(t, CellNumber, cells["a"].Kind)
	assert.Equal(t, 7.4, cells["a"].Value)
	assert.Equal(t, CellCensored, cells["b"].Kind)
	assert.Equal(t, CellMissing, cells["c"].Kind)
	assert.Equal(t, CellNumber, cells["d"].Kind)
	assert.Equal(t, CellMissing, cells["e"].Kind)
	assert.Equal(t, CellMissing, cells["f"].Kind)

	out, err := json.Marshal(cells)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7.4,"b":"<0.1","c":null,"d":"8","e":"n/a","f":null}`, string(out))
}
