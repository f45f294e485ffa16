package usecase

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngMagic is a minimal PNG header, enough for content-type sniffing.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestExtractImage_JSONObject(t *testing.T) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngMagic)

	tests := []struct {
		name    string
		fields  map[string]interface{}
		want    string
		wantOK  bool
		prefix  string // when set, assert prefix instead of exact match
	}{
		{
			name:   "data URL passes through unchanged",
			fields: map[string]interface{}{"image": dataURL},
			want:   dataURL,
			wantOK: true,
		},
		{
			name:   "bare base64 payload is wrapped",
			fields: map[string]interface{}{"image": base64.StdEncoding.EncodeToString(pngMagic)},
			prefix: "data:image/png;base64,",
			wantOK: true,
		},
		{
			name:   "non-image bytes default to jpeg",
			fields: map[string]interface{}{"image": base64.StdEncoding.EncodeToString([]byte("plain text payload"))},
			prefix: "data:image/jpeg;base64,",
			wantOK: true,
		},
		{
			name: "file field wins over image field",
			fields: map[string]interface{}{
				"file":  dataURL,
				"image": "data:image/gif;base64,Zm9v",
			},
			want:   dataURL,
			wantOK: true,
		},
		{
			name:   "later field used when earlier is unusable",
			fields: map[string]interface{}{"file": "   ", "base64Image": dataURL},
			want:   dataURL,
			wantOK: true,
		},
		{
			name:   "non-base64 garbage rejected",
			fields: map[string]interface{}{"image": "not base64 at all!!!"},
			wantOK: false,
		},
		{
			name:   "non-string field rejected",
			fields: map[string]interface{}{"image": 42.0},
			wantOK: false,
		},
		{
			name:   "empty object",
			fields: map[string]interface{}{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractImage(ImageFromJSONObject(tt.fields))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Empty(t, got)
				return
			}
			if tt.prefix != "" {
				assert.True(t, strings.HasPrefix(got, tt.prefix), "got %q", got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractImage_RawString(t *testing.T) {
	got, ok := ExtractImage(ImageFromString(base64.StdEncoding.EncodeToString(pngMagic)))
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	_, ok = ExtractImage(ImageFromString(""))
	assert.False(t, ok)
}

func TestExtractImage_MultipartBytes(t *testing.T) {
	got, ok := ExtractImage(ImageFromBytes(pngMagic))
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	_, ok = ExtractImage(ImageFromBytes(nil))
	assert.False(t, ok)
}

func TestExtractImage_Absent(t *testing.T) {
	_, ok := ExtractImage(ImageSource{})
	assert.False(t, ok)
}

func TestDecodeDataURL(t *testing.T) {
	encoded, ok := ExtractImage(ImageFromBytes(pngMagic))
	require.True(t, ok)

	mime, raw, err := DecodeDataURL(encoded)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngMagic, raw)

	_, _, err = DecodeDataURL("http://example.com/x.png")
	assert.Error(t, err)

	_, _, err = DecodeDataURL("data:image/png,rawdata")
	assert.Error(t, err)

	_, _, err = DecodeDataURL("data:image/png;base64,@@@")
	assert.Error(t, err)
}
