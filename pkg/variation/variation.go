// Package variation implements C4, the header-variation loader: parsing
// on-disk payload catalogs of CL and TE header spellings into an ordered
// list of probe descriptors, and providing the built-in defaults used when
// no catalog file is present.
package variation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smuggledetect/smuggledetect/pkg/header"
)

// HeaderVariation is one entry in a header catalog: a specific byte-level
// spelling of a CL or TE header, plus any extra headers the probe should
// attach alongside it.
type HeaderVariation struct {
	Description string            `json:"description"`
	HeaderName  string            `json:"header_name"`
	HeaderValue string            `json:"header_value"`
	ExtraRaw    []headerFieldJSON `json:"extra_headers"`
}

type headerFieldJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field returns the variation's header as a header.Field, preserving the
// exact bytes given in the catalog (no canonicalization).
func (v HeaderVariation) Field() header.Field {
	return header.NewField(v.HeaderName, v.HeaderValue)
}

// Extras returns the variation's extra headers as header.Fields.
func (v HeaderVariation) Extras() []header.Field {
	fields := make([]header.Field, 0, len(v.ExtraRaw))
	for _, e := range v.ExtraRaw {
		fields = append(fields, header.NewField(e.Name, e.Value))
	}
	return fields
}

// LoadCatalog reads a JSON array of HeaderVariation objects from path. The
// file is UTF-8 on disk; individual field bytes are taken as-is and later
// placed on the wire unmodified.
func LoadCatalog(path string) ([]HeaderVariation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variation catalog %s: %w", path, err)
	}
	var variations []HeaderVariation
	if err := json.Unmarshal(data, &variations); err != nil {
		return nil, fmt.Errorf("parsing variation catalog %s: %w", path, err)
	}
	return variations, nil
}

// DefaultTEVariations returns the built-in Transfer-Encoding obfuscation
// catalog used when no catalog file is supplied or the file is unreadable.
// Modeled on (not imported from) the TEObfuscations table referenced in
// DESIGN.md, reproduced here as Go literals because that file is reference
// material, not a dependency.
func DefaultTEVariations() []HeaderVariation {
	return []HeaderVariation{
		{Description: "plain chunked", HeaderName: "Transfer-Encoding", HeaderValue: "chunked"},
		{Description: "leading space before value", HeaderName: "Transfer-Encoding", HeaderValue: " chunked"},
		{Description: "trailing space after value", HeaderName: "Transfer-Encoding", HeaderValue: "chunked "},
		{Description: "leading tab before value", HeaderName: "Transfer-Encoding", HeaderValue: "\tchunked"},
		{Description: "trailing tab after value", HeaderName: "Transfer-Encoding", HeaderValue: "chunked\t"},
		{Description: "trailing null byte", HeaderName: "Transfer-Encoding", HeaderValue: "chunked\x00"},
		{Description: "mixed-case value", HeaderName: "Transfer-Encoding", HeaderValue: "Chunked"},
		{Description: "obsolete line-folded value", HeaderName: "Transfer-Encoding", HeaderValue: "\r\n chunked"},
		{Description: "bare word wrong case header name", HeaderName: "transfer-encoding", HeaderValue: "chunked"},
		{Description: "space before colon", HeaderName: "Transfer-Encoding ", HeaderValue: "chunked"},
	}
}

// DefaultCLVariations returns the built-in Content-Length catalog used when
// no catalog file is supplied. Unlike TE variations, CL spellings are kept
// minimal: the defining axis for CL.TE/TE.CL disagreement is the competing
// Transfer-Encoding header, not Content-Length spelling tricks.
func DefaultCLVariations() []HeaderVariation {
	return []HeaderVariation{
		{Description: "plain content-length", HeaderName: "Content-Length", HeaderValue: ""},
	}
}
