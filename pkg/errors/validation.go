package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// MaxIDLength bounds node and edge identifiers accepted by the API.
const MaxIDLength = 256

// ValidateNodeID checks a node identifier supplied by a client. IDs are
// embedded in port ids ("<node>-<var>") and generated edge ids, so control
// characters and surrounding whitespace are rejected.
func ValidateNodeID(id string) error {
	return validateID("node", id)
}

// ValidateEdgeID checks a client-supplied edge identifier. An empty edge id
// is allowed; the graph generates one.
func ValidateEdgeID(id string) error {
	if id == "" {
		return nil
	}
	return validateID("edge", id)
}

func validateID(what, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", what)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", what, MaxIDLength)
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s id cannot start or end with whitespace", what)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid control characters", what)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q is malformed", rawURL)
	}
	return nil
}

// ValidateHTTPMethod accepts the methods an HTTP-call node may use.
func ValidateHTTPMethod(m string) error {
	switch m {
	case "", "GET", "POST":
		return nil
	}
	return New(ErrCodeInvalidInput, "unsupported HTTP method %q (want GET or POST)", m)
}
