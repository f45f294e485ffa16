package usecase

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// ImageSourceKind tags the shape an upload arrived in. The kind is resolved
// once at the delivery boundary; everything downstream sees one canonical
// payload.
type ImageSourceKind int

const (
	SourceAbsent ImageSourceKind = iota
	SourceMultipartField
	SourceJSONObject
	SourceRawString
)

// ImageSource is a tagged union over the upload shapes the API accepts.
type ImageSource struct {
	Kind   ImageSourceKind
	Fields map[string]interface{} // JSON object body
	Value  string                 // raw string body
	Bytes  []byte                 // multipart file content
}

// ImageFromJSONObject wraps a decoded JSON body.
func ImageFromJSONObject(fields map[string]interface{}) ImageSource {
	return ImageSource{Kind: SourceJSONObject, Fields: fields}
}

// ImageFromString wraps a raw string body.
func ImageFromString(value string) ImageSource {
	return ImageSource{Kind: SourceRawString, Value: value}
}

// ImageFromBytes wraps raw multipart file content.
func ImageFromBytes(data []byte) ImageSource {
	return ImageSource{Kind: SourceMultipartField, Bytes: data}
}

// imageFieldNames is the probe order for JSON bodies; first non-empty wins.
var imageFieldNames = []string{"file", "image", "base64Image"}

const dataURLPrefix = "data:image/"

// ExtractImage normalizes any accepted upload shape into one canonical
// data-URL string. Returns ("", false) when no usable image is found;
// it never fails any other way.
func ExtractImage(src ImageSource) (string, bool) {
	switch src.Kind {
	case SourceJSONObject:
		for _, name := range imageFieldNames {
			candidate, ok := src.Fields[name]
			if !ok {
				continue
			}
			if url, ok := coerceCandidate(candidate); ok {
				return url, true
			}
		}
		return "", false

	case SourceRawString:
		return coerceString(src.Value)

	case SourceMultipartField:
		return coerceBytes(src.Bytes)

	default:
		return "", false
	}
}

// coerceCandidate handles one probed JSON field value.
func coerceCandidate(candidate interface{}) (string, bool) {
	switch v := candidate.(type) {
	case string:
		return coerceString(v)
	case []byte:
		return coerceBytes(v)
	default:
		return "", false
	}
}

// coerceString accepts a ready data URL unchanged, or treats the string as a
// bare base64 payload and wraps it.
func coerceString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, dataURLPrefix) {
		return s, true
	}

	// Bare base64 payload: verify it decodes before trusting it
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(s); err != nil {
			return "", false
		}
	}
	if len(raw) == 0 {
		return "", false
	}
	return fmt.Sprintf("data:%s;base64,%s", detectImageMIME(raw), base64.StdEncoding.EncodeToString(raw)), true
}

// coerceBytes encodes raw file content as a data URL.
func coerceBytes(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	return fmt.Sprintf("data:%s;base64,%s", detectImageMIME(data), base64.StdEncoding.EncodeToString(data)), true
}

// detectImageMIME sniffs the content type, defaulting to JPEG when the bytes
// do not look like a known image format.
func detectImageMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}

// DecodeDataURL splits a canonical data URL back into its MIME type and raw
// bytes, for callers that persist the original image.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}
	rest := strings.TrimPrefix(dataURL, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, fmt.Errorf("missing base64 marker in data URL")
	}
	mime := rest[:sep]
	raw, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return mime, raw, nil
}
