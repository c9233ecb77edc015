package formenc

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/zodmon/transport"
)

func TestFields(t *testing.T) {
	type login struct {
		User string `json:"user"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name   string
		body   any
		want   map[string]any
		wantOK bool
	}{
		{"map any", map[string]any{"a": 1}, map[string]any{"a": 1}, true},
		{"map string", map[string]string{"a": "x"}, map[string]any{"a": "x"}, true},
		{"url values", url.Values{"a": {"1", "2"}}, map[string]any{"a": []string{"1", "2"}}, true},
		{"struct", login{User: "u", Age: 3}, map[string]any{"user": "u", "age": float64(3)}, true},
		{"struct pointer", &login{User: "u"}, map[string]any{"user": "u", "age": float64(0)}, true},
		{"nil", nil, nil, false},
		{"string", "a=1", nil, false},
		{"slice", []any{1}, nil, false},
		{"int keys", map[int]string{1: "a"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Fields(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLEncode(t *testing.T) {
	got, err := URLEncode(map[string]any{
		"userName": "user",
		"password": "p&ss word",
		"ids":      []int{1, 2},
		"active":   true,
		"skip":     nil,
		"meta":     map[string]any{"k": "v"},
	})
	require.NoError(t, err)

	values, err := url.ParseQuery(got)
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"userName": {"user"},
		"password": {"p&ss word"},
		"ids":      {"1", "2"},
		"active":   {"true"},
		"meta":     {`{"k":"v"}`},
	}, values)
	assert.True(t, strings.HasPrefix(got, "active=true&ids=1&ids=2"), "keys are sorted: %s", got)
}

func readParts(t *testing.T, body []byte, contentType string) (map[string][]string, map[string]*multipart.Part, map[string][]byte) {
	t.Helper()
	mt, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mt)

	fields := map[string][]string{}
	files := map[string]*multipart.Part{}
	contents := map[string][]byte{}

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			files[part.FormName()] = part
			contents[part.FormName()] = data
			continue
		}
		fields[part.FormName()] = append(fields[part.FormName()], string(data))
	}
	return fields, files, contents
}

func TestMultipart_Fields(t *testing.T) {
	body, contentType, err := Multipart(map[string]any{"id": 4, "name": "post", "tags": []string{"a", "b"}, "none": nil})
	require.NoError(t, err)

	fields, files, _ := readParts(t, body, contentType)
	assert.Empty(t, files)
	assert.Equal(t, map[string][]string{
		"id":   {"4"},
		"name": {"post"},
		"tags": {"a", "b"},
	}, fields)
}

func TestMultipart_Files(t *testing.T) {
	body, contentType, err := Multipart(map[string]any{
		"avatar": transport.File{Name: "me.png", ContentType: "image/png", Content: strings.NewReader("png-bytes")},
		"raw":    []byte("raw-bytes"),
		"doc":    &transport.File{Content: strings.NewReader(`a "quoted" doc`)},
	})
	require.NoError(t, err)

	_, files, contents := readParts(t, body, contentType)
	require.Len(t, files, 3)

	assert.Equal(t, "me.png", files["avatar"].FileName())
	assert.Equal(t, "image/png", files["avatar"].Header.Get("Content-Type"))
	assert.Equal(t, "png-bytes", string(contents["avatar"]))

	assert.Equal(t, "raw", files["raw"].FileName())
	assert.Equal(t, "application/octet-stream", files["raw"].Header.Get("Content-Type"))
	assert.Equal(t, "raw-bytes", string(contents["raw"]))

	assert.Equal(t, "doc", files["doc"].FileName())
	assert.Equal(t, `a "quoted" doc`, string(contents["doc"]))
}
