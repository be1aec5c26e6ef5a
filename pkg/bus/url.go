package bus

import (
	"errors"
	"strings"
)

// ErrMalformedURL is returned by ParseURL when the grammar in spec.md §4.B
// is violated.
var ErrMalformedURL = errors.New("bus: malformed url")

// ParsedURL is the textual decomposition of a "[socket:]path[#fragment]"
// string, prior to hashing the socket name / resolving it to a Handle.
type ParsedURL struct {
	Socket   string // empty if the URL carried no socket segment
	Path     string
	Fragment string
}

// maxSocketSegmentLength matches spec.md §4.B: "socket segment length ≤ 63".
const maxSocketSegmentLength = 63

// ParseURL parses the grammar "[socket:]path[#fragment]" with the
// constraints from spec.md §4.B: at most one ':' and one '#', '#' must
// not precede ':', and the socket segment must be nonempty-or-absent and
// no longer than 63 bytes.
func ParseURL(s string) (ParsedURL, error) {
	colonIdx := strings.IndexByte(s, ':')
	hashIdx := strings.IndexByte(s, '#')

	if strings.Count(s, ":") > 1 || strings.Count(s, "#") > 1 {
		return ParsedURL{}, ErrMalformedURL
	}
	if hashIdx >= 0 && colonIdx >= 0 && hashIdx < colonIdx {
		return ParsedURL{}, ErrMalformedURL
	}

	rest := s
	var p ParsedURL
	if colonIdx >= 0 {
		p.Socket = s[:colonIdx]
		if len(p.Socket) == 0 || len(p.Socket) > maxSocketSegmentLength {
			return ParsedURL{}, ErrMalformedURL
		}
		rest = s[colonIdx+1:]
	}

	if hashIdx >= 0 {
		// hashIdx is an index into the original string s; recompute
		// relative to rest since colon may have shifted it.
		relHash := strings.IndexByte(rest, '#')
		if relHash < 0 {
			return ParsedURL{}, ErrMalformedURL
		}
		p.Path = rest[:relHash]
		p.Fragment = rest[relHash+1:]
	} else {
		p.Path = rest
	}

	return p, nil
}

// String renders the canonical "socket:path#fragment" form.
func (p ParsedURL) String() string {
	var b strings.Builder
	if p.Socket != "" {
		b.WriteString(p.Socket)
		b.WriteByte(':')
	}
	b.WriteString(p.Path)
	if p.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(p.Fragment)
	}
	return b.String()
}
