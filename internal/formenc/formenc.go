// Package formenc encodes object-shaped request bodies as
// application/x-www-form-urlencoded or multipart/form-data.
//
// Field values are rendered as follows: strings verbatim, numbers and
// booleans with fmt, slices as one field per element, nested objects as JSON.
// Nil values are skipped. In multipart bodies transport.File values and
// []byte become file parts.
package formenc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/richiexuetang/zodmon/transport"
)

// Fields returns body as a field map when it is object-shaped: a map with
// string keys, or a struct (encoded through its JSON form).
func Fields(body any) (map[string]any, bool) {
	switch b := body.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return b, true
	case url.Values:
		out := make(map[string]any, len(b))
		for k, v := range b {
			out[k] = v
		}
		return out, true
	}

	rv := reflect.ValueOf(body)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, false
		}
		var out map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

// URLEncode renders fields as a url-encoded form, keys sorted.
func URLEncode(fields map[string]any) (string, error) {
	values := url.Values{}
	for _, key := range sortedKeys(fields) {
		strs, err := fieldStrings(fields[key])
		if err != nil {
			return "", fmt.Errorf("formenc: field %q: %w", key, err)
		}
		for _, s := range strs {
			values.Add(key, s)
		}
	}
	return values.Encode(), nil
}

// Multipart renders fields as a multipart/form-data body and returns it with
// its Content-Type, boundary included.
func Multipart(fields map[string]any) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(fields) {
		if err := writePart(w, key, fields[key]); err != nil {
			return nil, "", fmt.Errorf("formenc: field %q: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("formenc: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, key string, v any) error {
	switch f := v.(type) {
	case transport.File:
		return writeFile(w, key, f)
	case *transport.File:
		if f == nil {
			return nil
		}
		return writeFile(w, key, *f)
	case []byte:
		return writeFile(w, key, transport.File{Name: key, Content: bytes.NewReader(f)})
	case []transport.File:
		for _, file := range f {
			if err := writeFile(w, key, file); err != nil {
				return err
			}
		}
		return nil
	}

	strs, err := fieldStrings(v)
	if err != nil {
		return err
	}
	for _, s := range strs {
		if err := w.WriteField(key, s); err != nil {
			return err
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, key string, f transport.File) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := f.Name
	if name == "" {
		name = key
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(key), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if f.Content == nil {
		return nil
	}
	_, err = io.Copy(part, f.Content)
	return err
}

// fieldStrings renders one field value; slices yield one string per element.
func fieldStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case fmt.Stringer:
		return []string{t.String()}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var out []string
		for i := range rv.Len() {
			strs, err := fieldStrings(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, strs...)
		}
		return out, nil
	case reflect.Map, reflect.Struct:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return []string{string(raw)}, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return fieldStrings(rv.Elem().Interface())
	}
	return []string{fmt.Sprint(v)}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
