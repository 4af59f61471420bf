package mediatype_test

import (
	"testing"

	"github.com/advdv/bmsg/mediatype"
	"github.com/stretchr/testify/require"
)

func types(s ...string) []mediatype.MediaType {
	out := make([]mediatype.MediaType, len(s))
	for i, v := range s {
		out[i] = mediatype.MustParse(v)
	}

	return out
}

func TestFirstMatch(t *testing.T) {
	for _, tt := range []struct {
		name   string
		server []string
		client []string
		want   string
		ok     bool
	}{
		{"exact", []string{"application/json"}, []string{"application/json"}, "application/json", true},
		{"client order wins", []string{"text/html", "application/json"}, []string{"application/json", "text/html"}, "application/json", true},
		{"server wildcard", []string{"*/*"}, []string{"image/png", "text/html"}, "image/png", true},
		{"subtype wildcard", []string{"text/*"}, []string{"application/json", "text/plain"}, "text/plain", true},
		{"no match", []string{"text/html"}, []string{"application/json"}, "", false},
		{"empty client", []string{"text/html"}, nil, "", false},
		{"empty server", nil, []string{"text/html"}, "", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mediatype.FirstMatch(types(tt.server...), types(tt.client...))
			require.Equal(t, tt.ok, ok)

			if ok {
				require.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestMatchPrefersMostSpecificServerEntry(t *testing.T) {
	res, ok := mediatype.Match(types("*/*", "text/*", "text/html"), types("text/html"))
	require.True(t, ok)
	require.Equal(t, "text/html", res.Server.String())

	res, ok = mediatype.Match(types("*/*", "text/*"), types("text/html"))
	require.True(t, ok)
	require.Equal(t, "text/*", res.Server.String())

	res, ok = mediatype.Match(types("text/plain", "text/*", "*/*"), types("text/html"))
	require.True(t, ok)
	require.Equal(t, "text/*", res.Server.String())
}

func TestMatchTieKeepsServerOrder(t *testing.T) {
	res, ok := mediatype.Match(types("text/*", "text/*; level=2"), types("text/html"))
	require.True(t, ok)
	require.Equal(t, "text/*", res.Server.String())
}

func TestMatcher(t *testing.T) {
	m := mediatype.NewMatcher(types("text/html", "application/*")...)
	require.True(t, m.Matches(mediatype.JSON))
	require.False(t, m.Matches(mediatype.Plain))

	got, ok := m.First(types("image/png", "application/yaml")...)
	require.True(t, ok)
	require.Equal(t, mediatype.YAML.String(), got.String())
}
