package trust

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/vinayprograms/toolreg/errors"
)

// specialSchemes have a host-based authority and treat '\' as '/'.
var specialSchemes = map[string]bool{
	"file":  true,
	"ftp":   true,
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
}

// domainProfile is UTS #46 processing as browsers apply it to hosts.
var domainProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.CheckHyphens(false),
	idna.CheckJoiners(true),
	idna.BidiRule(),
	idna.StrictDomainName(false),
	idna.VerifyDNSLength(false),
)

// NormalizeRemote reduces a remote URL to host plus path with trailing
// ".git" suffixes removed. Scheme, port, credentials, query and fragment are
// dropped.
//
// Parsing follows the WHATWG URL rules git hosts are addressed by: surrounding
// whitespace is trimmed, tabs and newlines are removed, http(s) URLs accept
// any mix of '/' and '\' after the scheme, hosts are percent-decoded and
// mapped to lowercase ASCII, and "." and ".." path segments are resolved.
// Paths compare case-sensitively.
func NormalizeRemote(remote string) (string, error) {
	input := strings.TrimFunc(remote, func(r rune) bool { return r <= ' ' })
	input = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, input)

	scheme, rest, ok := splitScheme(input)
	if !ok {
		return "", errors.MalformedURL(remote, nil)
	}
	special := specialSchemes[scheme]

	terminators := "/?#"
	if special {
		rest = strings.TrimLeft(rest, `/\`)
		terminators = `/\?#`
	} else {
		var found bool
		if rest, found = strings.CutPrefix(rest, "//"); !found {
			return "", errors.MalformedURL(remote, fmt.Errorf("no authority"))
		}
	}

	end := strings.IndexAny(rest, terminators)
	if end < 0 {
		end = len(rest)
	}
	host, err := parseAuthority(rest[:end], special)
	if err != nil {
		return "", errors.MalformedURL(remote, err)
	}

	path := rest[end:]
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if special {
		path = strings.ReplaceAll(path, `\`, "/")
	}
	path = resolvePath(path, special)
	for strings.HasSuffix(path, ".git") {
		path = strings.TrimSuffix(path, ".git")
	}
	return host + path, nil
}

// splitScheme returns the lowercased scheme and what follows its colon.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isASCIIAlpha(c):
		case i > 0 && (isASCIIDigit(c) || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// parseAuthority drops credentials and port and returns the normalized host.
func parseAuthority(authority string, special bool) (string, error) {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}

	var host, port string
	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", fmt.Errorf("unterminated IPv6 address")
		}
		host, port = strings.ToLower(authority[:end+1]), authority[end+1:]
		if port != "" && port[0] != ':' {
			return "", fmt.Errorf("invalid character after IPv6 address")
		}
		port = strings.TrimPrefix(port, ":")
	} else {
		host, port, _ = strings.Cut(authority, ":")
	}

	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 || strings.ContainsAny(port, "+-") {
			return "", fmt.Errorf("invalid port %q", port)
		}
	}
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if strings.HasPrefix(host, "[") {
		return host, nil
	}

	if !special {
		if i := strings.IndexFunc(host, isForbiddenHostRune); i >= 0 {
			return "", fmt.Errorf("forbidden host character %q", host[i])
		}
		return percentEncode(host, func(c byte) bool { return c < 0x20 || c >= 0x7f }), nil
	}

	decoded := percentDecode(host)
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("host is not valid UTF-8")
	}
	ascii, err := domainProfile.ToASCII(decoded)
	if err != nil {
		return "", err
	}
	if ascii == "" {
		return "", fmt.Errorf("empty host")
	}
	if i := strings.IndexFunc(ascii, isForbiddenDomainRune); i >= 0 {
		return "", fmt.Errorf("forbidden host character %q", ascii[i])
	}
	return ascii, nil
}

// resolvePath removes "." segments and lets ".." consume its parent.
// A trailing dot segment leaves a trailing slash.
func resolvePath(path string, special bool) string {
	if path == "" {
		if special {
			return "/"
		}
		return ""
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		last := i == len(segments)-1
		switch strings.ToLower(seg) {
		case "..", ".%2e", "%2e.", "%2e%2e":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		case ".", "%2e":
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, percentEncode(seg, isPathEscaped))
		}
	}
	return "/" + strings.Join(out, "/")
}

func isPathEscaped(c byte) bool {
	switch c {
	case ' ', '"', '#', '<', '>', '?', '`', '{', '}':
		return true
	}
	return c < 0x20 || c >= 0x7f
}

func percentEncode(s string, escape func(byte) bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; escape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// percentDecode decodes valid %XX escapes and leaves anything else as is.
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			v, _ := strconv.ParseUint(s[i+1:i+3], 16, 8)
			b = append(b, byte(v))
			i += 2
			continue
		}
		b = append(b, s[i])
	}
	return string(b)
}

func isForbiddenHostRune(r rune) bool {
	switch r {
	case 0, '\t', '\n', '\r', ' ', '#', '/', ':', '<', '>', '?', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

func isForbiddenDomainRune(r rune) bool {
	return isForbiddenHostRune(r) || r < 0x20 || r == '%' || r == 0x7f
}

func isASCIIAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isASCIIDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHex(c byte) bool {
	return isASCIIDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
