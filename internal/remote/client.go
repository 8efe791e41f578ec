// Package remote talks to the clip archive service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
)

var log = logging.L("remote")

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL     string
	UploadPath  string
	ArchivePath string
	Field       string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client implements ports.Uploader and ports.ArchiveSource.
type Client struct {
	uploadURL  string
	archiveURL string
	field      string
	http       *http.Client
}

func NewClient(opts Options) *Client {
	if opts.UploadPath == "" {
		opts.UploadPath = "/upload"
	}
	if opts.ArchivePath == "" {
		opts.ArchivePath = "/archive"
	}
	if opts.Field == "" {
		opts.Field = "audio"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		uploadURL:  base + ensureSlash(opts.UploadPath),
		archiveURL: base + ensureSlash(opts.ArchivePath),
		field:      opts.Field,
		http:       client,
	}
}

func ensureSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// HTTPClient exposes the underlying client so players can reuse its transport.
func (c *Client) HTTPClient() *http.Client { return c.http }

// Upload sends clip as a single multipart file part.
func (c *Client) Upload(ctx context.Context, clip domain.Clip) (domain.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// CreateFormFile forces application/octet-stream; the service needs the clip's type.
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, c.field, clip.Filename))
	mimeType := clip.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	partHeader.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: create form file: %v", domain.ErrUploadFailed, err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: write audio data: %v", domain.ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: close multipart body: %v", domain.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: create request: %v", domain.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	log.Debug("uploading clip", logging.KeyURL, c.uploadURL, "filename", clip.Filename, "bytes", len(clip.Data))

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.UploadResult{}, fmt.Errorf("%w: POST %s returned %s", domain.ErrUploadFailed, c.uploadURL, resp.Status)
	}

	var result domain.UploadResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return domain.UploadResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrUploadFailed, err)
	}

	log.Info("clip uploaded", logging.KeyStatus, resp.StatusCode, "filename", clip.Filename)
	return result, nil
}

type archiveResponse struct {
	Entries *[]domain.ArchiveEntry `json:"entries"`
}

// FetchArchive lists the archived clips in service order.
func (c *Client) FetchArchive(ctx context.Context) ([]domain.ArchiveEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.archiveURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrArchiveFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s returned %s", domain.ErrArchiveFetchFailed, c.archiveURL, resp.Status)
	}

	var payload archiveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrArchiveFetchFailed, err)
	}
	if payload.Entries == nil {
		return nil, fmt.Errorf("%w: response has no entries", domain.ErrArchiveFetchFailed)
	}

	entries := make([]domain.ArchiveEntry, len(*payload.Entries))
	copy(entries, *payload.Entries)
	log.Debug("archive fetched", logging.KeyURL, c.archiveURL, "entries", len(entries))
	return entries, nil
}
