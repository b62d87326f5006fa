package email

import "testing"

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe <jane@Example.COM>", "example.com"},
		{"noaddress", "unknown"},
		{"plain@site.org", "site.org"},
		{"  plain@Site.ORG  ", "site.org"},
		{`"Acme, Inc." <billing@acme.io>`, "acme.io"},
		{"<>", "unknown"},
		{"trailing@", "unknown"},
		{"", "unknown"},
		{"odd@first@second", "first"},
		{"a <> b <x@Y.com>", "y.com"},
		{"a <<x@y.com>", "y.com"},
		{"unclosed <x@y.com", "y.com"},
	}

	for _, tt := range tests {
		if got := DomainOf(tt.in); got != tt.want {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSenderNameOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Jane Doe" <jane@example.com>`, "Jane Doe"},
		{"jane@example.com", "jane"},
		{"Jane <jane@example.com>", "Jane"},
		{"<jane@example.com>", "jane"},
		{"   <jane@example.com>", "jane"},
		{"noaddress", "noaddress"},
	}

	for _, tt := range tests {
		if got := SenderNameOf(tt.in); got != tt.want {
			t.Errorf("SenderNameOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeaderValue(t *testing.T) {
	headers := []Header{
		{Name: "subject", Value: "Hello"},
		{Name: "FROM", Value: "a@b.com"},
		{Name: "From", Value: "second@b.com"},
	}

	tests := []struct {
		name string
		want string
	}{
		{"Subject", "Hello"},
		{"from", "a@b.com"},
		{"Date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderValue(headers, tt.name); got != tt.want {
				t.Errorf("HeaderValue(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	if got := HeaderValue(nil, "From"); got != "" {
		t.Errorf("HeaderValue(nil) = %q, want empty", got)
	}
}
