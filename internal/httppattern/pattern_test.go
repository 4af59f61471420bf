package httppattern_test

import (
	"testing"

	"github.com/advdv/bmsg/internal/httppattern"
	"github.com/stretchr/testify/require"
)

func TestParseAndBuild(t *testing.T) {
	for _, tt := range []struct {
		pattern   string
		vals      []string
		wildcards []string
		want      string
	}{
		{pattern: "/{$}", want: "/"},
		{pattern: "/", want: "/"},
		{pattern: "/items/", want: "/items/"},
		{pattern: "GET /items/{id}", vals: []string{"42"}, wildcards: []string{"id"}, want: "/items/42"},
		{pattern: "GET /items/{id}/{$}", vals: []string{"42"}, wildcards: []string{"id"}, want: "/items/42/"},
		{pattern: "example.com/a/{x}/b/{y}", vals: []string{"1", "2"}, wildcards: []string{"x", "y"}, want: "/a/1/b/2"},
		{pattern: "/files/{path...}", vals: []string{"a b/c"}, wildcards: []string{"path"}, want: "/files/a%20b/c"},
		{pattern: "/q/{v}", vals: []string{"a/b"}, wildcards: []string{"v"}, want: "/q/a%2Fb"},
	} {
		t.Run(tt.pattern, func(t *testing.T) {
			pat, err := httppattern.ParsePattern(tt.pattern)
			require.NoError(t, err)
			require.Equal(t, tt.wildcards, pat.Wildcards())
			require.Equal(t, tt.pattern, pat.String())

			got, err := httppattern.Build(pat, tt.vals...)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethodAndHost(t *testing.T) {
	pat, err := httppattern.ParsePattern("POST example.com/x")
	require.NoError(t, err)
	require.Equal(t, "POST", pat.Method())
	require.Equal(t, "example.com", pat.Host())
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		err     string
	}{
		{"", "empty pattern"},
		{"GET items", "missing /"},
		{"/a/{b", "bad wildcard segment"},
		{"/a/x{b}", "bad wildcard segment"},
		{"/{$}/a", "{$} not at end"},
		{"/{a...}/b", "not at end"},
		{"/{a}/{a}", "duplicate wildcard name"},
		{"/{1a}", "bad wildcard name"},
	} {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := httppattern.ParsePattern(tt.pattern)
			require.ErrorContains(t, err, tt.err)
		})
	}
}

func TestBuildValueCount(t *testing.T) {
	pat, err := httppattern.ParsePattern("/a/{x}/{y}")
	require.NoError(t, err)

	_, err = httppattern.Build(pat, "1")
	require.ErrorContains(t, err, "not enough values")

	_, err = httppattern.Build(pat, "1", "2", "3")
	require.ErrorContains(t, err, "too many values")
}
