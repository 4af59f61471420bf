package mediatype_test

import (
	"testing"

	"github.com/advdv/bmsg/mediatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		in     string
		name   string
		params []mediatype.Param
		str    string
	}{
		{in: "text/html", name: "text/html", str: "text/html"},
		{in: " Text/HTML ", name: "text/html", str: "text/html"},
		{in: "*", name: "*/*", str: "*/*"},
		{in: "application/*", name: "application/*", str: "application/*"},
		{
			in:     "text/plain; charset=UTF-8; format=flowed",
			name:   "text/plain",
			params: []mediatype.Param{{"charset", "UTF-8"}, {"format", "flowed"}},
			str:    "text/plain; charset=UTF-8; format=flowed",
		},
		{
			in:     `multipart/form-data; boundary="a b;c"`,
			name:   "multipart/form-data",
			params: []mediatype.Param{{"boundary", "a b;c"}},
			str:    `multipart/form-data; boundary="a b;c"`,
		},
	} {
		t.Run(tt.in, func(t *testing.T) {
			mt, err := mediatype.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, mt.Name())
			assert.Equal(t, tt.str, mt.String())

			if tt.params == nil {
				assert.Empty(t, mt.Params())
			} else {
				assert.Equal(t, tt.params, mt.Params())
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"text",
		"*/html",
		"text/",
		"/html",
		"text/html; charset",
		`text/html; a="unterminated`,
		"te xt/html",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := mediatype.Parse(in)
			require.Error(t, err)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	require.Panics(t, func() { mediatype.MustParse("nope") })
}

func TestSpecificityAndEquality(t *testing.T) {
	require.Equal(t, 0, mediatype.All.Specificity())
	require.Equal(t, 1, mediatype.MustParse("text/*").Specificity())
	require.Equal(t, 2, mediatype.HTML.Specificity())

	require.True(t, mediatype.MustParse("text/html").Equal(mediatype.HTML))
	require.False(t, mediatype.MustParse("text/html; level=1").Equal(mediatype.HTML))
	require.True(t, mediatype.MustParse("text/html; level=1").Bare().Equal(mediatype.HTML))
}

func TestImmutability(t *testing.T) {
	base := mediatype.MustParse("text/plain; charset=utf-8")
	derived := base.WithParam("charset", "iso-8859-1")

	require.Equal(t, "utf-8", base.Charset())
	require.Equal(t, "iso-8859-1", derived.Charset())

	params := base.Params()
	params[0].Value = "mutated"
	require.Equal(t, "utf-8", base.Charset())

	require.Equal(t, "text/plain", base.WithoutParam("charset").String())
}

func TestMatches(t *testing.T) {
	for _, tt := range []struct {
		a, b string
		want bool
	}{
		{"text/html", "text/html", true},
		{"text/html", "text/*", true},
		{"*/*", "application/json", true},
		{"text/*", "application/json", false},
		{"text/html", "text/plain", false},
		{"text/html; level=1", "text/html", true},
	} {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			a, b := mediatype.MustParse(tt.a), mediatype.MustParse(tt.b)
			require.Equal(t, tt.want, a.Matches(b))
			require.Equal(t, tt.want, b.Matches(a))
		})
	}
}

func TestIsTextual(t *testing.T) {
	require.True(t, mediatype.HTML.IsTextual())
	require.True(t, mediatype.JSON.IsTextual())
	require.True(t, mediatype.MustParse("application/problem+json").IsTextual())
	require.False(t, mediatype.Protobuf.IsTextual())
	require.False(t, mediatype.OctetStream.IsTextual())
	require.True(t, mediatype.Multipart.IsMultipart())
}

func TestParseAccept(t *testing.T) {
	list, err := mediatype.ParseAccept("text/html;q=0.5, application/json", "text/plain;q=0.5, image/png;q=0")
	require.NoError(t, err)

	names := make([]string, len(list))
	for i, mt := range list {
		names[i] = mt.String()
	}

	require.Equal(t, []string{"application/json", "text/html", "text/plain"}, names)

	list, err = mediatype.ParseAccept()
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = mediatype.ParseAccept("text/html;q=2")
	require.ErrorContains(t, err, "invalid quality value")
}

func TestParseList(t *testing.T) {
	list, err := mediatype.ParseList(`a/b; x="1,2", c/d,,`)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a/b", list[0].Name())

	x, ok := list[0].Param("x")
	require.True(t, ok)
	require.Equal(t, "1,2", x)
}
