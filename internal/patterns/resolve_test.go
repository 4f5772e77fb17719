package patterns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaBeta(t *testing.T) *Set {
	t.Helper()
	s, err := New(Pattern{Name: "alpha", Source: "a+"}, Pattern{Name: "beta", Source: "b+"})
	require.NoError(t, err)
	return s
}

func intPtr(i int) *int { return &i }

func TestResolve_All(t *testing.T) {
	s := alphaBeta(t)
	for _, name := range []string{"", "all", "ALL", "All"} {
		sel, err := s.Resolve(Query{Name: name})
		require.NoError(t, err)
		assert.True(t, sel.All())
		assert.Equal(t, "All", sel.Label())
		assert.Equal(t, []string{"alpha", "beta"}, sel.Set.Names())
	}
}

func TestResolve_ByName(t *testing.T) {
	sel, err := alphaBeta(t).Resolve(Query{Name: "beta"})
	require.NoError(t, err)
	assert.Equal(t, "beta", sel.Name)
	assert.Equal(t, []string{"beta"}, sel.Set.Names())
	src, ok := sel.Set.Source("beta")
	assert.True(t, ok)
	assert.Equal(t, "b+", src)
}

func TestResolve_ByIndex(t *testing.T) {
	sel, err := alphaBeta(t).Resolve(Query{Name: "alpha", Index: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, "beta", sel.Name)
}

func TestResolve_IndexOutOfRange(t *testing.T) {
	s := alphaBeta(t)
	for _, i := range []int{-1, 2, 100} {
		_, err := s.Resolve(Query{Index: intPtr(i)})
		var ie *IndexOutOfRangeError
		require.True(t, errors.As(err, &ie), "index %d", i)
		assert.Equal(t, i, ie.Index)
		assert.Equal(t, 2, ie.Count)
	}
	_, err := s.Resolve(Query{Index: intPtr(2)})
	assert.EqualError(t, err, "invalid selector index 2, out of range (0-1)")
}

func TestResolve_UnknownName(t *testing.T) {
	_, err := alphaBeta(t).Resolve(Query{Name: "nonexistent"})
	var ue *UnknownPatternError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "nonexistent", ue.Name)
	assert.Empty(t, ue.Suggestions)
}

func TestResolve_UnknownNameSuggests(t *testing.T) {
	s, err := New(
		Pattern{Name: "ipv4", Source: `\d+`},
		Pattern{Name: "ipv6", Source: `[0-9a-f:]+`},
		Pattern{Name: "email", Source: `\w+@\w+`},
	)
	require.NoError(t, err)

	_, err = s.Resolve(Query{Name: "ipv"})
	var ue *UnknownPatternError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, []string{"ipv4", "ipv6"}, ue.Suggestions)
}

func TestNew_DuplicateName(t *testing.T) {
	_, err := New(Pattern{Name: "a", Source: "x"}, Pattern{Name: "a", Source: "y"})
	assert.Error(t, err)
}
