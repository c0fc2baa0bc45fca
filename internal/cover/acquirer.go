// Package cover downloads book covers, drops placeholder images and stores a
// re-encoded JPEG in blob storage.
package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bbrks/go-blurhash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"shelfapi/internal/blob"
	"shelfapi/internal/isbn"
)

const (
	// PlaceholderThreshold matches the catalog's cover probe: anything smaller
	// is the 1x1 pixel served for unknown covers.
	PlaceholderThreshold = 1000

	maxCoverSize   = 10 * 1024 * 1024
	maxCoverWidth  = 800
	jpegQuality    = 85
	blurHashSize   = 64
	defaultTimeout = 10 * time.Second
)

var errPlaceholder = errors.New("placeholder cover")

// URLBuilder builds the upstream cover URL for an ISBN and size.
// The catalog client implements it, so previews and stored covers agree.
type URLBuilder interface {
	CoverURL(isbn, size string) string
}

// Cover is a stored cover image.
type Cover struct {
	Path     string
	BlurHash string
	Width    int
	Height   int
	Size     int64
}

type Acquirer struct {
	httpClient *http.Client
	urls       URLBuilder
	storage    blob.Storage
	logger     *slog.Logger
	timeout    time.Duration
	userAgent  string
}

func NewAcquirer(urls URLBuilder, storage blob.Storage, timeout time.Duration, userAgent string, logger *slog.Logger) *Acquirer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		httpClient: &http.Client{Timeout: timeout},
		urls:       urls,
		storage:    storage,
		logger:     logger,
		timeout:    timeout,
		userAgent:  userAgent,
	}
}

// StoragePath is the deterministic blob path for an ISBN's cover.
func StoragePath(code string) string {
	return fmt.Sprintf("covers/%s.jpg", code)
}

// Fetch downloads, transcodes and stores the cover for an ISBN.
// It never fails: a missing cover, a placeholder or any processing error
// yields nil.
func (a *Acquirer) Fetch(ctx context.Context, rawISBN, size string) *Cover {
	code := isbn.Normalize(rawISBN)
	if code == "" {
		return nil
	}
	url := a.urls.CoverURL(code, size)

	data, err := a.download(ctx, url)
	if err != nil {
		if !errors.Is(err, errPlaceholder) {
			a.logger.Warn("cover download failed", "isbn", code, "url", url, "error", err)
		}
		return nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		a.logger.Warn("cover decode failed", "isbn", code, "error", err)
		return nil
	}
	if img.Bounds().Dx() > maxCoverWidth {
		img = imaging.Resize(img, maxCoverWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		a.logger.Warn("cover encode failed", "isbn", code, "error", err)
		return nil
	}

	obj, err := a.storage.Put(ctx, StoragePath(code), buf.Bytes(), "image/jpeg")
	if err != nil {
		a.logger.Warn("cover store failed", "isbn", code, "error", err)
		return nil
	}

	hash, err := computeBlurHash(img)
	if err != nil {
		a.logger.Debug("blurhash failed", "isbn", code, "error", err)
	}

	bounds := img.Bounds()
	a.logger.Info("stored cover",
		"isbn", code,
		"path", obj.Path,
		"size", obj.Size,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
	)

	return &Cover{
		Path:     obj.Path,
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     obj.Size,
	}
}

func (a *Acquirer) download(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errPlaceholder
	}
	if resp.ContentLength >= 0 && resp.ContentLength < PlaceholderThreshold {
		return nil, errPlaceholder
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxCoverSize {
		return nil, fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}
	if len(data) < PlaceholderThreshold {
		return nil, errPlaceholder
	}
	return data, nil
}

// computeBlurHash encodes a 4x3 component hash from a small thumbnail.
func computeBlurHash(img image.Image) (string, error) {
	thumb := imaging.Fit(img, blurHashSize, blurHashSize, imaging.Box)
	return blurhash.Encode(4, 3, thumb)
}
