package genelist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuiper/deplot/internal/detable"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"ranked_list", MethodRankedList},
		{"r", MethodRankedList},
		{"ranked", MethodRankedList},
		{"combined", MethodCombined},
		{"c", MethodCombined},
		{"directional", MethodDirectional},
		{"dir", MethodDirectional},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseMethod_Rejects(t *testing.T) {
	for _, in := range []string{"", "bogus", "Combined", "ranked_lists"} {
		_, err := ParseMethod(in)
		require.Error(t, err, in)

		var cfgErr *detable.ConfigError
		assert.True(t, errors.As(err, &cfgErr), in)
	}
}

func TestParseMethods_CollapsesAndOrders(t *testing.T) {
	got, err := ParseMethods([]string{"directional", "r", "dir"})
	require.NoError(t, err)

	assert.Equal(t, []Method{MethodRankedList, MethodDirectional}, got)
}

func TestParseMethods_EmptyList(t *testing.T) {
	_, err := ParseMethods(nil)
	require.Error(t, err)

	var cfgErr *detable.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestMethod_String(t *testing.T) {
	assert.Equal(t, "ranked_list", MethodRankedList.String())
	assert.Equal(t, "combined", MethodCombined.String())
	assert.Equal(t, "directional", MethodDirectional.String())
}
