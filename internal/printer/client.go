package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceClient defines the printer control API used by the app and the
// skip-objects modal. It is implemented by *Client and can be faked in tests.
type DeviceClient interface {
	FetchStatus(ctx context.Context) (*StatusResponse, error)
	FetchSkipMetadata(ctx context.Context, filename string) (*SkipMetadata, error)
	OpenPickImage(ctx context.Context, rawURL string) (io.ReadCloser, error)
	ApplySkip(ctx context.Context, cmd SkipCommand) error
}

// Ensure Client implements DeviceClient at compile time.
var _ DeviceClient = (*Client)(nil)

// Client talks to the printer control HTTP API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	// command sends skip commands. It has no overall timeout; a slow device
	// may still apply the command, so only the caller's context cancels it.
	command   *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8989"
	defaultUserAgent = "skipper/0.1"
	requestTimeout   = 5 * time.Second
	imageTimeout     = 20 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		command:   &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchStatus retrieves the live print telemetry.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatusResponse
	if err := c.doJSON(ctx, c.http, http.MethodGet, &url.URL{Path: "/api/status"}, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSkipMetadata retrieves plate and skip-object metadata for a print file.
func (c *Client) FetchSkipMetadata(ctx context.Context, filename string) (*SkipMetadata, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		return nil, fmt.Errorf("filename required")
	}
	values := url.Values{}
	values.Set("file", name)
	rel := &url.URL{Path: "/api/skip-metadata", RawQuery: values.Encode()}
	var payload SkipMetadata
	if err := c.doJSON(ctx, c.http, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// OpenPickImage starts a download of a pick-map image. Relative URLs are
// resolved against the API base. The caller closes the returned body.
func (c *Client) OpenPickImage(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse pick url %q: %w", rawURL, err)
	}
	ctx, cancel := context.WithTimeout(ctx, imageTimeout)
	req, err := c.newRequest(ctx, http.MethodGet, rel, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "image/png,image/webp,image/*")

	// The image client has no overall timeout; the context bounds the body read.
	resp, err := (&http.Client{Transport: c.http.Transport}).Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("pick image %s returned status %d", rel.String(), resp.StatusCode)
	}
	return &cancelBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

// ApplySkip sends a skip-objects command to the printer.
func (c *Client) ApplySkip(ctx context.Context, cmd SkipCommand) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if len(cmd.ObjList) == 0 {
		return fmt.Errorf("obj_list is empty")
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return c.doJSON(ctx, c.command, http.MethodPost, &url.URL{Path: "/api/skip-objects"}, body, nil)
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, body []byte) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, client *http.Client, method string, rel *url.URL, body []byte, dest any) error {
	req, err := c.newRequest(ctx, method, rel, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&apiErr) == nil && strings.TrimSpace(apiErr.Error) != "" {
			return fmt.Errorf("api %s returned status %d: %s", rel.Path, resp.StatusCode, strings.TrimSpace(apiErr.Error))
		}
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse printer_api %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
