package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/jsonxml2sql/document"
)

func toJSON(t *testing.T, v document.Value) string {
	t.Helper()
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"JSON", ModeJSON, false},
		{" xml ", ModeXML, false},
		{"html", ModeHTML, false},
		{"parquet", ModeParquet, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"object keeps key order", `{"b":1,"a":[true,null,"x"]}`, `{"b":1,"a":[true,null,"x"]}`, true},
		{"array", `[1, 2.5, -3e2]`, `[1,2.5,-300]`, true},
		{"scalar", `"hi"`, `"hi"`, true},
		{"nested", `{"a":{"b":{"c":[]}}}`, `{"a":{"b":{"c":[]}}}`, true},
		{"null is not a document", `null`, ``, false},
		{"invalid", `{"a":`, ``, false},
		{"xml", `<a/>`, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseJSON([]byte(tt.in))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, toJSON(t, v))
			}
		})
	}
}

func TestParseXML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "repeated children become an array",
			in:   `<root><user id="1"><name>Ann</name></user><user id="2"><name>Bob</name></user></root>`,
			want: `{"root":[{"name":"Ann","id":"1"},{"name":"Bob","id":"2"}]}`,
		},
		{
			name: "single child stays scalar",
			in:   `<?xml version="1.0"?><config><host>localhost</host><port>80</port></config>`,
			want: `{"host":"localhost","port":"80"}`,
		},
		{
			name: "mixed text goes to _text",
			in:   `<p class="x">hello <b>big</b> world</p>`,
			want: `{"b":"big","class":"x","_text":"hello world"}`,
		},
		{
			name: "leaf text root",
			in:   `<greeting>  hi there </greeting>`,
			want: `"hi there"`,
		},
		{
			name: "empty element",
			in:   `<empty/>`,
			want: `{}`,
		},
		{
			name: "attributes alongside an array",
			in:   `<list kind="x"><i>1</i><i>2</i></list>`,
			want: `{"i":["1","2"],"kind":"x"}`,
		},
		{
			name: "comments and cdata",
			in:   `<a><!-- note --><b><![CDATA[raw <text>]]></b></a>`,
			want: `{"b":"raw <text>"}`,
		},
		{
			name: "prefixed names",
			in:   `<ns:a xmlns:ns="urn:x"><ns:b>1</ns:b></ns:a>`,
			want: `{"ns:b":"1","xmlns:ns":"urn:x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseXML([]byte(tt.in))
			require.True(t, ok)
			assert.Equal(t, tt.want, toJSON(t, v))
		})
	}
}

func TestParseXMLInvalid(t *testing.T) {
	for _, in := range []string{
		``,
		`<a>`,
		`<a></b>`,
		`<a/><b/>`,
		`<a/>trailing`,
		`plain text`,
		`<a>&nbsp;</a>`,
	} {
		t.Run(in, func(t *testing.T) {
			_, ok := ParseXML([]byte(in))
			assert.False(t, ok)
		})
	}
}

func TestParseHTML(t *testing.T) {
	in := `<html><head><title>t</title></head><body>
		<div id="main">
			<p>Hello</p>
			<br>
		</div>
	</body></html>`

	v, ok := ParseHTML([]byte(in))
	require.True(t, ok)
	assert.Equal(t,
		`{"tag":"body","children":[{"tag":"div","attributes":{"id":"main"},"children":[{"tag":"p","children":["Hello"]},{"tag":"br"}]}]}`,
		toJSON(t, v))
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		mode     Mode
		wantMode Mode
		wantErr  bool
	}{
		{"auto json", `{"a":1}`, ModeAuto, ModeJSON, false},
		{"auto xml", `<a><b>1</b></a>`, ModeAuto, ModeXML, false},
		{"auto garbage", `nope`, ModeAuto, "", true},
		{"json mode rejects xml", `<a/>`, ModeJSON, "", true},
		{"xml mode rejects json", `{"a":1}`, ModeXML, "", true},
		{"html mode", `<p>x</p>`, ModeHTML, ModeHTML, false},
		{"auto never picks html", `<p>x</p><p>y</p>`, ModeAuto, "", true},
		{"empty mode is auto", `[1]`, "", ModeJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mode, err := Parse([]byte(tt.in), tt.mode)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognizedInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

func TestDecompress(t *testing.T) {
	payload := []byte(`{"users":[{"id":1}]}`)

	gzipped := func() []byte {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, _ = w.Write(payload)
		_ = w.Close()
		return buf.Bytes()
	}
	zstded := func() []byte {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(payload, nil)
	}
	lz4ed := func() []byte {
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		_, _ = w.Write(payload)
		_ = w.Close()
		return buf.Bytes()
	}
	brotlied := func() []byte {
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		_, _ = w.Write(payload)
		_ = w.Close()
		return buf.Bytes()
	}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"plain", "a.json", payload},
		{"gzip", "a.json.gz", gzipped()},
		{"zstd", "a.json.zst", zstded()},
		{"lz4", "a.json.lz4", lz4ed()},
		{"brotli", "a.json.br", brotlied()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.file, tt.data)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write([]byte(`<root><item>1</item><item>2</item></root>`))
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "items.xml.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	v, mode, err := ReadFile(path, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, ModeXML, mode)
	assert.Equal(t, `{"root":["1","2"]}`, toJSON(t, v))

	_, _, err = ReadFile(filepath.Join(dir, "missing.json"), ModeAuto)
	assert.Error(t, err)
}
