// Package param provides typed views over request parameters and the resolver
// that builds them from path variables, query and form values and uploads.
package param

import (
	"reflect"
	"slices"

	"github.com/advdv/bmsg/convert"
	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
)

// ErrValidation marks a parameter that is missing or cannot be converted.
var ErrValidation = errors.New("invalid parameter")

var defaultConverters = convert.New()

// View is a multi-valued parameter. It carries either string values or
// uploads, never both.
type View struct {
	name    string
	values  []string
	uploads []Upload
	typ     mediatype.MediaType
	conv    *convert.Registry
}

// NewView returns a view over string values. A nil registry uses the default converters.
func NewView(name string, values []string, typ mediatype.MediaType, conv *convert.Registry) *View {
	if typ.IsZero() {
		typ = mediatype.All
	}

	return &View{name: name, values: slices.Clone(values), typ: typ, conv: conv}
}

// NewUploadView returns a view over uploads.
func NewUploadView(name string, uploads []Upload, conv *convert.Registry) *View {
	typ := mediatype.All
	if len(uploads) > 0 {
		typ = uploads[0].Type()
	}

	return &View{name: name, uploads: slices.Clone(uploads), typ: typ, conv: conv}
}

// Name of the parameter.
func (v *View) Name() string { return v.name }

// Type is the declared media type of the values, "*/*" when unknown.
func (v *View) Type() mediatype.MediaType { return v.typ }

// IsPresent reports whether the parameter has at least one value or upload.
func (v *View) IsPresent() bool { return len(v.values) > 0 || len(v.uploads) > 0 }

// IsUpload reports whether the view holds uploads.
func (v *View) IsUpload() bool { return len(v.uploads) > 0 }

// Len returns the number of values or uploads.
func (v *View) Len() int { return max(len(v.values), len(v.uploads)) }

// Strings returns all values in order.
func (v *View) Strings() []string { return slices.Clone(v.values) }

// Uploads returns all uploads in order.
func (v *View) Uploads() []Upload { return slices.Clone(v.uploads) }

// String returns the first value, failing when there is none.
func (v *View) String() (string, error) {
	if len(v.values) == 0 {
		return "", v.missing()
	}

	return v.values[0], nil
}

// StringOr returns the first value or def.
func (v *View) StringOr(def string) string {
	if len(v.values) == 0 {
		return def
	}

	return v.values[0]
}

// Bool converts the first value.
func (v *View) Bool() (bool, error) { return As[bool](v) }

// Int converts the first value.
func (v *View) Int() (int, error) { return As[int](v) }

// Int64 converts the first value.
func (v *View) Int64() (int64, error) { return As[int64](v) }

// Float64 converts the first value.
func (v *View) Float64() (float64, error) { return As[float64](v) }

// Upload returns the first upload, failing when there is none.
func (v *View) Upload() (Upload, error) {
	if len(v.uploads) == 0 {
		return Upload{}, errors.Mark(errors.Newf("no upload for parameter %q", v.name), ErrValidation)
	}

	return v.uploads[0], nil
}

var (
	uploadType      = reflect.TypeFor[Upload]()
	uploadSliceType = reflect.TypeFor[[]Upload]()
)

// To converts the view into the value pointed to by target using the converter
// registry. Upload views convert to Upload and []Upload only.
func (v *View) To(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Newf("param: target must be a non-nil pointer, got %T", target)
	}

	t := rv.Elem().Type()

	switch t {
	case uploadType:
		u, err := v.Upload()
		if err != nil {
			return err
		}

		rv.Elem().Set(reflect.ValueOf(u))

		return nil
	case uploadSliceType:
		rv.Elem().Set(reflect.ValueOf(v.Uploads()))
		return nil
	}

	if v.IsUpload() {
		return errors.Mark(errors.Newf("parameter %q holds uploads, cannot convert to %v", v.name, t),
			convert.ErrUnsupportedConversion)
	}

	conv := v.conv
	if conv == nil {
		conv = defaultConverters
	}

	res := conv.FromStrings(t, v.values)

	switch res.Status {
	case convert.OK:
		if res.Value == nil {
			rv.Elem().Set(reflect.Zero(t))
		} else {
			rv.Elem().Set(reflect.ValueOf(res.Value))
		}

		return nil
	case convert.NotFound:
		return errors.Mark(errors.Newf("no converter for parameter %q of type %v", v.name, t),
			convert.ErrUnsupportedConversion)
	default:
		if errors.Is(res.Err, convert.ErrMissingValue) {
			return v.missing()
		}

		return errors.Mark(errors.Wrapf(res.Err, "invalid value for parameter %q", v.name), ErrValidation)
	}
}

func (v *View) missing() error {
	return errors.Mark(errors.Newf("required parameter %q is not present", v.name), ErrValidation)
}

// As converts v into a value of type T.
func As[T any](v *View) (T, error) {
	var out T
	err := v.To(&out)

	return out, err
}
