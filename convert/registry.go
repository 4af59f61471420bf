// Package convert resolves application types from the string values carried by
// parameters and headers.
package convert

import (
	"encoding"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedConversion is returned when no converter exists for a target type.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrMissingValue is reported by scalar conversions of an empty value list.
	ErrMissingValue = errors.New("no value present")
)

// Status discriminates a conversion [Result].
type Status int

const (
	// OK means the conversion produced a value.
	OK Status = iota
	// NotFound means no converter handles the target type.
	NotFound
	// Invalid means a converter exists but rejected the values.
	Invalid
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotFound:
		return "not found"
	case Invalid:
		return "invalid"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Result of a conversion. Value is set on OK, Err on Invalid.
type Result struct {
	Status Status
	Value  any
	Err    error
}

func ok(v any) Result          { return Result{Status: OK, Value: v} }
func invalid(err error) Result { return Result{Status: Invalid, Err: err} }

// Func converts the values of one parameter.
type Func func(values []string) (any, error)

// Registry maps target types to converters. Types without an explicit
// converter fall back to encoding.TextUnmarshaler, the scalar kinds, and
// slices and pointers of those. Register during setup only; lookups are safe
// for concurrent use afterwards.
type Registry struct {
	fns map[reflect.Type]Func
}

// New returns a registry with converters for time.Duration, time.Time (RFC 3339)
// and url.URL registered.
func New() *Registry {
	r := &Registry{fns: map[reflect.Type]Func{}}

	Register(r, scalar(time.ParseDuration))
	Register(r, scalar(func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }))
	Register(r, scalar(func(s string) (url.URL, error) {
		u, err := url.Parse(s)
		if err != nil {
			return url.URL{}, err
		}

		return *u, nil
	}))

	return r
}

// Register adds a converter for type T.
func Register[T any](r *Registry, fn func(values []string) (T, error)) {
	r.Register(reflect.TypeFor[T](), func(values []string) (any, error) { return fn(values) })
}

// Register adds a converter for type t, replacing any existing one.
func (r *Registry) Register(t reflect.Type, fn Func) {
	r.fns[t] = fn
}

// Supports reports whether values can be converted to t.
func (r *Registry) Supports(t reflect.Type) bool {
	if _, ok := r.fns[t]; ok {
		return true
	}

	switch {
	case reflect.PointerTo(t).Implements(textUnmarshalerType), isScalarKind(t.Kind()):
		return true
	case t.Kind() == reflect.Slice, t.Kind() == reflect.Pointer:
		return r.Supports(t.Elem())
	default:
		return false
	}
}

// FromStrings converts values to a value of type t.
func (r *Registry) FromStrings(t reflect.Type, values []string) Result {
	if fn, found := r.fns[t]; found {
		v, err := fn(values)
		if err != nil {
			return invalid(err)
		}

		return ok(v)
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		if len(values) == 0 {
			return invalid(ErrMissingValue)
		}

		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(values[0])); err != nil {
			return invalid(err)
		}

		return ok(ptr.Elem().Interface())
	}

	switch t.Kind() {
	case reflect.Slice:
		return r.slice(t, values)
	case reflect.Pointer:
		if len(values) == 0 {
			return ok(reflect.Zero(t).Interface())
		}

		res := r.FromStrings(t.Elem(), values)
		if res.Status != OK {
			return res
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(reflect.ValueOf(res.Value))

		return ok(ptr.Interface())
	}

	if !isScalarKind(t.Kind()) {
		return Result{Status: NotFound}
	}

	if len(values) == 0 {
		return invalid(ErrMissingValue)
	}

	v, err := parseScalar(t, values[0])
	if err != nil {
		return invalid(err)
	}

	return ok(v)
}

func (r *Registry) slice(t reflect.Type, values []string) Result {
	if !r.Supports(t.Elem()) {
		return Result{Status: NotFound}
	}

	out := reflect.MakeSlice(t, 0, len(values))

	for _, v := range values {
		res := r.FromStrings(t.Elem(), []string{v})
		if res.Status != OK {
			return res
		}

		out = reflect.Append(out, reflect.ValueOf(res.Value))
	}

	return ok(out.Interface())
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func scalar[T any](parse func(string) (T, error)) func([]string) (T, error) {
	return func(values []string) (T, error) {
		if len(values) == 0 {
			var zero T
			return zero, ErrMissingValue
		}

		return parse(values[0])
	}
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func parseScalar(t reflect.Type, s string) (any, error) {
	v := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}

		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}

		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}

		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return nil, err
		}

		v.SetFloat(f)
	default:
		return nil, errors.Newf("unsupported kind %s", t.Kind())
	}

	return v.Interface(), nil
}
