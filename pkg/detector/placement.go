package detector

import "github.com/smuggledetect/smuggledetect/pkg/header"

// placedDirective is the result of placing a smuggled "name: value" HTTP/1
// directive into an H2 request per the selected PayloadPlacement. At most
// one of extraHeader/pathOverride is populated; evidenceName/evidenceValue
// always describe exactly the bytes a Finding should report as having been
// sent, independent of how they were carried.
type placedDirective struct {
	extraHeader   *header.Field
	pathOverride  string
	evidenceName  string
	evidenceValue string
}

// place computes where to put a directiveName/directiveValue pair (e.g.
// "content-length"/"4" or "transfer-encoding"/"chunked") for placement,
// given the request's current path. Grounded on spec §4.5's placement
// semantics list verbatim.
func place(placement PayloadPlacement, path, directiveName, directiveValue string) placedDirective {
	directive := directiveName + ": " + directiveValue

	switch placement {
	case PlacementCustomHeaderValue:
		f := header.NewField("x-smuggled", directive)
		return placedDirective{extraHeader: &f, evidenceName: "x-smuggled", evidenceValue: directive}

	case PlacementCustomHeaderName:
		name := "x-smuggled\r\n" + directive + "\r\n"
		f := header.NewField(name, "1")
		return placedDirective{extraHeader: &f, evidenceName: name, evidenceValue: "1"}

	case PlacementRequestLine:
		newPath := path + "\r\n" + directive
		return placedDirective{pathOverride: newPath, evidenceName: ":path", evidenceValue: newPath}

	case PlacementNormalHeader:
		fallthrough
	default:
		f := header.NewField(directiveName, directiveValue)
		return placedDirective{extraHeader: &f, evidenceName: directiveName, evidenceValue: directiveValue}
	}
}
