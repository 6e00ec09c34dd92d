// Package payload decodes the self-describing base64 payloads that clients
// embed in upload requests (data URIs such as "data:image/png;base64,....").
package payload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mbayed/filevault/internal/common"
)

// dataURIRe matches "data:<type>/<subtype>;base64,<content>". The subtype
// is taken verbatim; it is the caller's problem that unusual subtype strings
// end up in storage keys unchanged.
var dataURIRe = regexp.MustCompile(`^data:([a-zA-Z0-9]+/[a-zA-Z0-9-.+]+);base64,(.*)$`)

// Payload is a decoded upload body.
type Payload struct {
	MediaType string
	Data      []byte
}

// Size returns the decoded byte length.
func (p *Payload) Size() int64 { return int64(len(p.Data)) }

// Reader returns a sequential view over the decoded bytes for streaming.
func (p *Payload) Reader() io.Reader { return bytes.NewReader(p.Data) }

// Extension returns the media subtype, used as the storage key suffix
// (e.g. "png" for "image/png").
func (p *Payload) Extension() string {
	if i := strings.Index(p.MediaType, "/"); i >= 0 {
		return p.MediaType[i+1:]
	}
	return p.MediaType
}

// Decode parses a data URI and decodes its base64 content in memory.
// Anything that does not match the expected shape fails with
// ErrMalformedPayload.
func Decode(encoded string) (*Payload, error) {
	m := dataURIRe.FindStringSubmatch(encoded)
	if m == nil {
		return nil, common.ErrMalformedPayload
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}

	return &Payload{MediaType: m[1], Data: data}, nil
}

// Encode builds the data-URI representation of data under mediaType.
func Encode(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
