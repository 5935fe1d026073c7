// Package backend is the HTTP client for the analysis server.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"streamreport/internal/report"
	"streamreport/internal/shared/telemetry"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-Id"

// Multipart field names expected by the upload endpoint.
const (
	FieldVideo    = "video"
	FieldData     = "data"
	FieldComments = "comments"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	AssetRoot string
	// HTTPClient is used as the base transport; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Client calls the upload, analyze and report endpoints.
type Client struct {
	baseURL    *url.URL
	assetRoot  string
	httpClient *http.Client
}

// Part is one named file of an upload.
type Part struct {
	Field    string
	Filename string
	Content  io.Reader
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type analyzeResponse struct {
	Success    bool            `json:"success"`
	SessionID  string          `json:"session_id,omitempty"`
	ReportData json.RawMessage `json:"report_data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewClient constructs a Client. A non-empty Token is sent as a bearer token on every call.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid API_BASE_URL scheme %q", base.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	} else {
		copied := *httpClient
		httpClient = &copied
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	assetRoot := strings.TrimSpace(opts.AssetRoot)
	if assetRoot == "" {
		assetRoot = report.DefaultAssetRoot
	}

	return &Client{
		baseURL:    base,
		assetRoot:  assetRoot,
		httpClient: httpClient,
	}, nil
}

// Upload posts the parts as one multipart body and returns the new session id.
func (c *Client) Upload(ctx context.Context, parts []Part) (string, error) {
	const op = "upload"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.Field, p.Filename)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(fw, p.Content); err != nil {
			return "", fmt.Errorf("read %s: %w", p.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "upload"), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var parsed uploadResponse
	if err := c.doJSON(req, op, &parsed); err != nil {
		return "", err
	}
	if !parsed.Success {
		return "", &RejectedError{Op: op, Message: parsed.Error}
	}
	id := strings.TrimSpace(parsed.SessionID)
	if id == "" {
		return "", ErrEmptySessionID
	}
	return id, nil
}

// Analyze runs server-side analysis for a session and returns its report.
func (c *Client) Analyze(ctx context.Context, sessionID string) (report.Report, error) {
	const op = "analyze"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "analyze", sessionID), nil)
	if err != nil {
		return report.Report{}, err
	}

	var parsed analyzeResponse
	if err := c.doJSON(req, op, &parsed); err != nil {
		return report.Report{}, err
	}
	if !parsed.Success {
		return report.Report{}, &RejectedError{Op: op, Message: parsed.Error}
	}
	if len(parsed.ReportData) == 0 || string(parsed.ReportData) == "null" {
		return report.Report{}, ErrMissingReport
	}
	rep, err := report.Decode(parsed.ReportData)
	if err != nil {
		return report.Report{}, fmt.Errorf("decode report_data: %w", err)
	}
	if rep.SessionID == "" {
		rep.SessionID = firstNonEmpty(parsed.SessionID, sessionID)
	}
	return rep, nil
}

// FetchReport loads a previously generated report. The endpoint returns the bare report.
func (c *Client) FetchReport(ctx context.Context, sessionID string) (report.Report, error) {
	const op = "fetch report"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("api", "report", sessionID), nil)
	if err != nil {
		return report.Report{}, err
	}
	var raw json.RawMessage
	if err := c.doJSON(req, op, &raw); err != nil {
		return report.Report{}, err
	}
	rep, err := report.Decode(raw)
	if err != nil {
		return report.Report{}, fmt.Errorf("decode report: %w", err)
	}
	if rep.SessionID == "" {
		rep.SessionID = sessionID
	}
	return rep, nil
}

// FetchAsset opens a generated file of a session. The caller closes the reader.
func (c *Client) FetchAsset(ctx context.Context, sessionID, filename string) (io.ReadCloser, error) {
	const op = "fetch asset"

	segments := append(strings.Split(strings.Trim(c.assetRoot, "/"), "/"), sessionID, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(segments...), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req, op)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Op: op, Code: resp.StatusCode}
	}
	return resp.Body, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.baseURL.JoinPath(escaped...).String()
}

func (c *Client) send(req *http.Request, op string) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := map[string]any{
		"op":          op,
		"request_id":  requestID,
		"method":      req.Method,
		"path":        req.URL.Path,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["err"] = err
		telemetry.Error("backend.request.failed", fields)
		return nil, &TransportError{Op: op, Err: err}
	}
	fields["status"] = resp.StatusCode
	telemetry.Debug("backend.request.complete", fields)
	return resp, nil
}

// doJSON sends req and decodes a 2xx body into out. Non-2xx responses become
// *StatusError carrying the body's error field when it has one.
func (c *Client) doJSON(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.send(req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return &StatusError{Op: op, Code: resp.StatusCode, Message: strings.TrimSpace(eb.Error)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s response parse: %w", op, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
