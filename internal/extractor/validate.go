package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wasilibs/go-re2"
)

// URLValidator checks that a URL is absolute http(s) and, when patterns are
// configured, matches at least one of them.
type URLValidator struct {
	patterns []*re2.Regexp
}

// NewURLValidator compiles the allowlist. An empty list allows every http(s) URL.
func NewURLValidator(patterns []string) (*URLValidator, error) {
	v := &URLValidator{}
	for _, p := range patterns {
		re, err := re2.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid url pattern %q: %w", p, err)
		}
		v.patterns = append(v.patterns, re)
	}
	return v, nil
}

// Validate returns the trimmed URL or an error wrapping ErrInvalidURL / ErrURLNotAllowed.
func (v *URLValidator) Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if v == nil || len(v.patterns) == 0 {
		return raw, nil
	}
	for _, re := range v.patterns {
		if re.MatchString(raw) {
			return raw, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrURLNotAllowed, u.Host)
}
