// Utilities for extracting session credentials from cURL commands and board URLs.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// dscCookie is the cookie Trello uses as a CSRF token for write requests.
const dscCookie = "dsc"

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	boardRegex  = regexp.MustCompile(`/b/([^/?#]+)`)
	boardIDExpr = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers.
//
// A cookie passed with -b takes precedence over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string
	var headerCookie string

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := firstNonEmpty(match[1], match[2])
		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		headers[key] = value
	}

	if m := cookieRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		cookie = firstNonEmpty(m[1], m[2])
	}
	if cookie == "" {
		cookie = headerCookie
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// Token returns the dsc cookie value carried by the parsed command.
func (c *CurlHeaders) Token() (string, error) {
	return TokenFromCookie(c.Cookie)
}

// TokenFromCookie extracts the dsc value from a raw Cookie header.
func TokenFromCookie(cookie string) (string, error) {
	for _, pair := range strings.Split(cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && name == dscCookie && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: dsc cookie not found, make sure you are logged in to Trello", ErrMissingCredentials)
}

// ParseBoardID returns the board short id from either a bare id or a board URL
// such as https://trello.com/b/AbCd1234/my-board.
func ParseBoardID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: board id is empty", ErrInvalidBoardID)
	}

	if m := boardRegex.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}

	if boardIDExpr.MatchString(s) {
		return s, nil
	}

	return "", fmt.Errorf("%w: unable to extract board id from %q", ErrInvalidBoardID, s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
