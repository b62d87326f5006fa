package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

// ListMessages returns one page of message ids under the requested label
func (p *Provider) ListMessages(ctx context.Context, req email.ListRequest) (email.ListPage, error) {
	if p.service == nil {
		return email.ListPage{}, email.ErrNotAuthenticated
	}

	call := p.service.Users.Messages.List("me").
		MaxResults(int64(req.MaxResults))
	if req.Label != "" {
		call = call.LabelIds(req.Label)
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return email.ListPage{}, fmt.Errorf("failed to list messages: %w", wrapError(err))
	}

	page := email.ListPage{
		IDs:           make([]string, 0, len(resp.Messages)),
		NextPageToken: resp.NextPageToken,
	}
	for _, msg := range resp.Messages {
		page.IDs = append(page.IDs, msg.Id)
	}
	return page, nil
}

// GetMetadata retrieves the requested headers of one message without its body
func (p *Provider) GetMetadata(ctx context.Context, req email.MetadataRequest) (email.Metadata, error) {
	if p.service == nil {
		return email.Metadata{}, email.ErrNotAuthenticated
	}

	call := p.service.Users.Messages.Get("me", req.ID).Format("metadata")
	if len(req.Headers) > 0 {
		call = call.MetadataHeaders(req.Headers...)
	}

	msg, err := call.Context(ctx).Do()
	if err != nil {
		return email.Metadata{}, fmt.Errorf("failed to get message %s: %w", req.ID, wrapError(err))
	}

	md := email.Metadata{ID: msg.Id}
	if req.IncludeSnippet {
		md.Snippet = msg.Snippet
	}
	if msg.Payload != nil {
		md.Headers = make([]email.Header, 0, len(msg.Payload.Headers))
		for _, h := range msg.Payload.Headers {
			md.Headers = append(md.Headers, email.Header{Name: h.Name, Value: h.Value})
		}
	}
	return md, nil
}

// wrapError marks Gmail throttling responses with email.ErrRateLimited
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case 429:
		return fmt.Errorf("%w: %v", email.ErrRateLimited, err)
	case 403:
		for _, item := range apiErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return fmt.Errorf("%w: %v", email.ErrRateLimited, err)
			}
		}
		if strings.Contains(apiErr.Message, "Rate Limit") {
			return fmt.Errorf("%w: %v", email.ErrRateLimited, err)
		}
	}
	return err
}
