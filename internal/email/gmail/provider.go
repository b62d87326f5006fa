package gmail

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

// Provider implements the email.Provider interface for Gmail
type Provider struct {
	credPath  string
	tokenPath string
	service   *gmail.Service
}

var _ email.Provider = (*Provider)(nil)

// New creates a new Gmail provider
func New(credPath, tokenPath string) *Provider {
	return &Provider{
		credPath:  credPath,
		tokenPath: tokenPath,
	}
}

// NewWithService wraps an already configured Gmail service
func NewWithService(service *gmail.Service) *Provider {
	return &Provider{service: service}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gmail"
}

// IsAuthenticated reports whether a service is ready or a saved token exists
func (p *Provider) IsAuthenticated() bool {
	if p.service != nil {
		return true
	}
	if p.tokenPath == "" {
		return false
	}
	_, err := loadToken(p.tokenPath)
	return err == nil
}

// Authenticate builds the Gmail service from the saved token. It returns
// email.ErrNotAuthenticated when no token has been saved; run Login first.
func (p *Provider) Authenticate(ctx context.Context) error {
	if p.service != nil {
		return nil
	}

	token, err := loadToken(p.tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return email.ErrNotAuthenticated
		}
		return fmt.Errorf("failed to read token: %w", err)
	}

	config, err := loadCredentials(p.credPath)
	if err != nil {
		return err
	}

	client := getClient(ctx, config, token, p.tokenPath)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}

	p.service = service
	return nil
}

// Login runs the browser consent flow and saves the resulting token
func (p *Provider) Login(ctx context.Context) error {
	config, err := loadCredentials(p.credPath)
	if err != nil {
		return err
	}

	token, err := getTokenFromWeb(ctx, config)
	if err != nil {
		return err
	}

	if err := saveToken(p.tokenPath, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	p.service = nil
	return p.Authenticate(ctx)
}

// Logout forgets the saved token
func (p *Provider) Logout() error {
	p.service = nil
	if err := os.Remove(p.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// UserEmail returns the address of the signed-in account
func (p *Provider) UserEmail(ctx context.Context) (string, error) {
	if p.service == nil {
		return "", email.ErrNotAuthenticated
	}

	profile, err := p.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return profile.EmailAddress, nil
}
