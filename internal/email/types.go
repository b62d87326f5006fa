package email

// Header is a single name/value pair as returned by the metadata call.
// Header lists are unordered and names are not normalised.
type Header struct {
	Name  string
	Value string
}

// ListRequest asks the provider for one page of message identifiers
type ListRequest struct {
	Label      string // Label filter, e.g. INBOX
	MaxResults int    // Page size, at most 100
	PageToken  string // Empty on the first call
}

// ListPage is one page of the listing
type ListPage struct {
	IDs           []string
	NextPageToken string // Empty when the listing is exhausted
}

// MetadataRequest asks for the headers and snippet of one message
type MetadataRequest struct {
	ID             string
	Headers        []string
	IncludeSnippet bool
}

// Metadata is the response to a MetadataRequest
type Metadata struct {
	ID      string
	Headers []Header
	Snippet string
}

// DefaultMetadataHeaders are the headers a record is built from
var DefaultMetadataHeaders = []string{"From", "Subject", "Date"}
