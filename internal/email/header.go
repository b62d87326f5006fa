package email

import "strings"

// UnknownDomain is the bucket for senders without a parsable address
const UnknownDomain = "unknown"

// addressOf returns the first non-empty bracketed address of a From header,
// otherwise the whole trimmed header.
func addressOf(from string) string {
	rest := from
	for {
		start := strings.Index(rest, "<")
		if start == -1 {
			break
		}
		rest = rest[start+1:]
		end := strings.IndexAny(rest, "<>")
		if end == -1 {
			break
		}
		if rest[end] == '>' && end > 0 {
			return rest[:end]
		}
		rest = rest[end:]
		if rest[0] == '>' {
			rest = rest[1:]
		}
	}
	return strings.TrimSpace(from)
}

// DomainOf extracts the lower-cased sender domain from a raw From header.
// It never fails: headers without a usable address map to UnknownDomain.
func DomainOf(from string) string {
	addr := addressOf(from)

	parts := strings.Split(addr, "@")
	if len(parts) < 2 {
		return UnknownDomain
	}

	domain := strings.ToLower(strings.TrimSpace(parts[1]))
	if domain == "" {
		return UnknownDomain
	}
	return domain
}

// SenderNameOf returns the display name of a From header, falling back to the
// local part of the address, or the header itself when it holds no address.
func SenderNameOf(from string) string {
	if idx := strings.Index(from, "<"); idx > 0 {
		name := strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		if name != "" {
			return name
		}
	}

	addr := addressOf(from)
	if at := strings.Index(addr, "@"); at != -1 {
		return addr[:at]
	}
	return from
}

// HeaderValue finds a header by case-insensitive name.
// Returns an empty string if absent.
func HeaderValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
