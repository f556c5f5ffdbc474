// ABOUTME: Uploads news images to Supabase Storage and returns their public URL
// ABOUTME: Content is sniffed before upload so only images leave the machine

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kabar-app/kabar/internal/config"
	"github.com/tidwall/gjson"
)

// MaxImageBytes caps the size of an uploaded image
const MaxImageBytes = 10 << 20

// DefaultFolder is where news images are stored inside the bucket
const DefaultFolder = "news"

var (
	// ErrNotConfigured is returned when storage credentials are missing
	ErrNotConfigured = errors.New("image storage is not configured (set SUPABASE_URL and SUPABASE_ANON_KEY)")
	// ErrNotImage is returned for content that is not an image
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge is returned for images above MaxImageBytes
	ErrTooLarge = errors.New("image is too large")
)

// Uploader writes objects into one Supabase Storage bucket
type Uploader struct {
	baseURL    string
	apiKey     string
	bucket     string
	host       string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Uploader
type Option func(*Uploader)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) {
		if hc != nil {
			u.httpClient = hc
		}
	}
}

// WithClock overrides the clock used to name objects
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// WithLogger sets the uploader's logger
func WithLogger(l *slog.Logger) Option {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// New creates an Uploader from the storage settings
func New(cfg config.StorageConfig, opts ...Option) (*Uploader, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	base := strings.TrimRight(cfg.URL, "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid storage URL %q", cfg.URL)
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "images"
	}

	u := &Uploader{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		bucket:     bucket,
		host:       parsed.Hostname(),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// ObjectPath names a new object as <folder>/<unix millis>.<ext>
func (u *Uploader) ObjectPath(folder, ext string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}
	return fmt.Sprintf("%s/%s.%s", folder, strconv.FormatInt(u.now().UnixMilli(), 10), ext)
}

// PublicURL returns the public address of an object in the bucket
func (u *Uploader) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, u.bucket, objectPath)
}

// UploadFile reads an image from disk and uploads it into folder
func (u *Uploader) UploadFile(ctx context.Context, folder, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return u.Upload(ctx, folder, data)
}

// CheckImage verifies that path is a readable image within MaxImageBytes
func CheckImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotImage, path)
	}
	if info.Size() > MaxImageBytes {
		return ErrTooLarge
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return nil
}

// Upload sends image bytes into folder and returns the public URL
func (u *Uploader) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if ext == "" || ext == "jpeg" {
		ext = "jpg"
	}

	objectPath := u.ObjectPath(folder, ext)
	target := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, u.bucket, objectPath)
	if err := u.ensureAllowed(target); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.apiKey)
	req.Header.Set("apikey", u.apiKey)
	req.Header.Set("Content-Type", mt.String())
	req.Header.Set("cache-control", "3600")
	req.Header.Set("x-upsert", "false")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "error").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		u.logger.Warn("Image upload rejected", "status", resp.StatusCode, "path", objectPath, "message", msg)
		return "", fmt.Errorf("image upload failed (status %d): %s", resp.StatusCode, msg)
	}

	u.logger.Info("Image uploaded", "path", objectPath, "type", mt.String(), "bytes", len(data))
	return u.PublicURL(objectPath), nil
}

func (u *Uploader) ensureAllowed(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Hostname() != u.host {
		return fmt.Errorf("host not allowed for storage: %s", parsed.Hostname())
	}
	return nil
}
