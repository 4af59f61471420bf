package body

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

type jsonCodec struct{}

// JSON returns a codec for application/json using encoding/json.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Types() []mediatype.MediaType { return []mediatype.MediaType{mediatype.JSON} }
func (jsonCodec) CanParse(t reflect.Type) bool { return isPointer(t) }
func (jsonCodec) CanWrite(t reflect.Type) bool { return t != nil }

func (jsonCodec) Parse(src *Source, target any) error {
	r, err := src.Text()
	if err != nil {
		return err
	}

	if err := json.NewDecoder(r).Decode(target); err != nil {
		return decodeError(err, "decode json body")
	}

	return nil
}

func (jsonCodec) Write(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}

	_, err = w.Write(data)

	return err
}

type yamlCodec struct{}

// YAML returns a codec for application/yaml using gopkg.in/yaml.v3.
func YAML() Codec { return yamlCodec{} }

func (yamlCodec) Types() []mediatype.MediaType {
	return []mediatype.MediaType{mediatype.YAML, mediatype.New("application", "x-yaml")}
}

func (yamlCodec) CanParse(t reflect.Type) bool { return isPointer(t) }
func (yamlCodec) CanWrite(t reflect.Type) bool { return t != nil }

func (yamlCodec) Parse(src *Source, target any) error {
	r, err := src.Text()
	if err != nil {
		return err
	}

	if err := yaml.NewDecoder(r).Decode(target); err != nil {
		return decodeError(err, "decode yaml body")
	}

	return nil
}

func (yamlCodec) Write(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode yaml")
	}

	return enc.Close()
}

type protobufCodec struct{}

var protoMessageType = reflect.TypeFor[proto.Message]()

// Protobuf returns a codec for protocol buffer messages in their binary wire format.
func Protobuf() Codec { return protobufCodec{} }

func (protobufCodec) Types() []mediatype.MediaType {
	return []mediatype.MediaType{mediatype.Protobuf, mediatype.New("application", "protobuf")}
}

func (protobufCodec) CanParse(t reflect.Type) bool { return t != nil && t.Implements(protoMessageType) }
func (protobufCodec) CanWrite(t reflect.Type) bool { return t != nil && t.Implements(protoMessageType) }

func (protobufCodec) Parse(src *Source, target any) error {
	data, err := io.ReadAll(src.Bytes())
	if err != nil {
		return err
	}

	if err := proto.Unmarshal(data, target.(proto.Message)); err != nil {
		return decodeError(err, "decode protobuf body")
	}

	return nil
}

func (protobufCodec) Write(w io.Writer, v any) error {
	data, err := proto.Marshal(v.(proto.Message))
	if err != nil {
		return errors.Wrap(err, "encode protobuf")
	}

	_, err = w.Write(data)

	return err
}

type textCodec struct{}

var (
	stringPtrType = reflect.TypeFor[*string]()
	bytesPtrType  = reflect.TypeFor[*[]byte]()
	stringerType  = reflect.TypeFor[fmt.Stringer]()
)

// Text returns a codec for text/plain. It parses into *string and *[]byte and
// writes strings, byte slices and fmt.Stringer values.
func Text() Codec { return textCodec{} }

func (textCodec) Types() []mediatype.MediaType { return []mediatype.MediaType{mediatype.Plain} }

func (textCodec) CanParse(t reflect.Type) bool { return t == stringPtrType || t == bytesPtrType }

func (textCodec) CanWrite(t reflect.Type) bool {
	return t != nil && (t.Kind() == reflect.String || t == bytesPtrType.Elem() || t.Implements(stringerType))
}

func (textCodec) Parse(src *Source, target any) error {
	if p, ok := target.(*[]byte); ok {
		data, err := io.ReadAll(src.Bytes())
		*p = data

		return err
	}

	r, err := src.Text()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	*(target.(*string)) = string(data)

	return nil
}

func (textCodec) Write(w io.Writer, v any) error {
	var err error

	switch v := v.(type) {
	case []byte:
		_, err = w.Write(v)
	case fmt.Stringer:
		_, err = io.WriteString(w, v.String())
	default:
		_, err = io.WriteString(w, reflect.ValueOf(v).String())
	}

	return err
}

func isPointer(t reflect.Type) bool { return t != nil && t.Kind() == reflect.Pointer }
