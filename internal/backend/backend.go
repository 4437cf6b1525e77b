package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/csheth/reportdesk/internal/attachment"
	"github.com/csheth/reportdesk/internal/report"
)

const (
	defaultEndpoint    = "http://localhost:5000/"
	defaultDiscardPath = "/clear_session"
)

// Config describes how to reach the report backend.
type Config struct {
	Endpoint    string
	DiscardPath string
	HTTPClient  *http.Client
}

// Client speaks the report backend's HTTP contract.
type Client interface {
	Submit(ctx context.Context, sub Submission) (Response, error)
	Discard(ctx context.Context, workspaceID string) error
	Endpoint() string
}

// Submission is one generate or refine request.
type Submission struct {
	Prompt      string
	Mode        report.Mode
	WorkspaceID string
	Attachment  *attachment.File
}

const (
	ActionGenerate = report.ActionGenerate
	ActionRefine   = report.ActionRefine
)

// Response is the structured reply. ReportContent is nil when the server
// sent null.
type Response struct {
	Status        string  `json:"status"`
	ReportContent *string `json:"report_content"`
	Message       string  `json:"message"`
	ActionType    string  `json:"action_type"`
}

func (r Response) Succeeded() bool {
	return r.Status == "success"
}

// Report returns the report text, treating null as empty.
func (r Response) Report() string {
	if r.ReportContent == nil {
		return ""
	}
	return *r.ReportContent
}

// Invalidated reports whether the server explicitly nulled the report.
func (r Response) Invalidated() bool {
	return r.ReportContent == nil
}

// New builds an HTTP client for cfg.
func New(cfg Config) (Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be an http(s) URL", endpoint)
	}
	discardPath := strings.TrimSpace(cfg.DiscardPath)
	if discardPath == "" {
		discardPath = defaultDiscardPath
	}
	ref, err := url.Parse(discardPath)
	if err != nil {
		return nil, fmt.Errorf("parse discard path: %w", err)
	}
	return &httpClient{
		endpoint: base.String(),
		discard:  base.ResolveReference(ref).String(),
		client:   pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Cancellation comes from the caller's context so the request bound stays
	// in one place.
	return &http.Client{}
}
