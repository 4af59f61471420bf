package param_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/advdv/bmsg/convert"
	"github.com/advdv/bmsg/mediatype"
	"github.com/advdv/bmsg/param"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewScalars(t *testing.T) {
	v := param.NewView("n", []string{"42", "7"}, mediatype.MediaType{}, nil)

	require.True(t, v.IsPresent())
	require.False(t, v.IsUpload())
	require.Equal(t, 2, v.Len())
	require.Equal(t, mediatype.All, v.Type())
	require.Equal(t, []string{"42", "7"}, v.Strings())

	s, err := v.String()
	require.NoError(t, err)
	require.Equal(t, "42", s)

	n, err := v.Int()
	require.NoError(t, err)
	require.Equal(t, 42, n)

	all, err := param.As[[]int64](v)
	require.NoError(t, err)
	require.Equal(t, []int64{42, 7}, all)
}

func TestViewMissing(t *testing.T) {
	v := param.NewView("id", nil, mediatype.All, nil)

	require.False(t, v.IsPresent())
	require.Equal(t, "fallback", v.StringOr("fallback"))

	_, err := v.String()
	require.ErrorIs(t, err, param.ErrValidation)
	require.ErrorContains(t, err, `required parameter "id" is not present`)

	_, err = v.Int()
	require.ErrorIs(t, err, param.ErrValidation)

	p, err := param.As[*int](v)
	require.NoError(t, err)
	require.Nil(t, p)

	list, err := param.As[[]string](v)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestViewInvalid(t *testing.T) {
	v := param.NewView("n", []string{"abc"}, mediatype.All, nil)

	_, err := v.Int()
	require.ErrorIs(t, err, param.ErrValidation)
	require.NotErrorIs(t, err, convert.ErrUnsupportedConversion)

	_, err = v.Bool()
	require.ErrorIs(t, err, param.ErrValidation)
}

func TestViewUnsupportedConversion(t *testing.T) {
	v := param.NewView("n", []string{"1"}, mediatype.All, nil)

	var target chan int
	err := v.To(&target)
	require.ErrorIs(t, err, convert.ErrUnsupportedConversion)
	require.NotErrorIs(t, err, param.ErrValidation)
}

func TestViewCustomConverter(t *testing.T) {
	type color struct{ name string }

	reg := convert.New()
	convert.Register(reg, func(values []string) (color, error) {
		if len(values) == 0 || values[0] == "" {
			return color{}, errors.New("empty color")
		}

		return color{name: strings.ToUpper(values[0])}, nil
	})

	v := param.NewView("c", []string{"red"}, mediatype.All, reg)
	c, err := param.As[color](v)
	require.NoError(t, err)
	require.Equal(t, "RED", c.name)

	d, err := param.As[time.Duration](param.NewView("d", []string{"1m"}, mediatype.All, reg))
	require.NoError(t, err)
	require.Equal(t, time.Minute, d)
}

func TestViewUploads(t *testing.T) {
	up := param.NewUpload("file", "a.txt", "text/plain", 5, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("hello")), nil
	})

	v := param.NewUploadView("file", []param.Upload{up}, nil)
	require.True(t, v.IsUpload())
	require.Equal(t, 1, v.Len())
	require.Equal(t, mediatype.Plain, v.Type())

	got, err := param.As[param.Upload](v)
	require.NoError(t, err)

	rc, err := got.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	list, err := param.As[[]param.Upload](v)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = v.Int()
	require.ErrorIs(t, err, convert.ErrUnsupportedConversion)

	_, err = param.NewView("x", []string{"1"}, mediatype.All, nil).Upload()
	require.ErrorIs(t, err, param.ErrValidation)
}

func TestUploadTypeFallback(t *testing.T) {
	require.Equal(t, mediatype.OctetStream, param.NewUpload("f", "x", "", 0, nil).Type())

	rc, err := param.NewUpload("f", "x", "", 0, nil).Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.Empty(t, data)
}

func TestViewToRequiresPointer(t *testing.T) {
	v := param.NewView("n", []string{"1"}, mediatype.All, nil)
	require.Error(t, v.To(1))
}

func TestSet(t *testing.T) {
	a := param.NewView("a", []string{"1"}, mediatype.All, nil)
	b := param.NewView("b", []string{"2"}, mediatype.All, nil)
	dup := param.NewView("a", []string{"3"}, mediatype.All, nil)

	set := param.NewSet(b, a, dup)
	require.Equal(t, 2, set.Len())
	require.Equal(t, []string{"b", "a"}, set.Names())

	got, ok := set.Lookup("a")
	require.True(t, ok)
	require.Equal(t, []string{"1"}, got.Strings())

	require.False(t, set.Get("missing").IsPresent())

	var names []string
	for name := range set.All() {
		names = append(names, name)
	}

	require.Equal(t, []string{"b", "a"}, names)
}
