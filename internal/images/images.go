// Package images finds a picture for a generated recipe, normalizes it to a JPEG thumbnail and
// stores it in object storage.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	DefaultSearchURL = "https://www.google.com/search?tbm=isch&hl=en&q="
	// KeyPrefix is where recipe images live in the bucket.
	KeyPrefix = "recipe-images/"
)

const (
	maxWidth      = 800
	jpegQuality   = 85
	maxCandidates = 3
	maxImageBytes = 10 << 20
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

var (
	nonKeyChars   = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	spaces        = regexp.MustCompile(`\s+`)
	dashes        = regexp.MustCompile(`-+`)
	originalURL   = regexp.MustCompile(`"ou":"([^"]+)"`)
	imageSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
)

// ErrNoImage is returned when no candidate could be downloaded and decoded.
var ErrNoImage = errors.New("no usable image found")

// ObjectStore is where finished thumbnails are kept.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(key string) string
}

// Service looks up, normalizes and stores recipe images.
type Service struct {
	store     ObjectStore
	client    *http.Client
	searchURL string
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSearchURL sets the search page prefix; the escaped query is appended to it.
func WithSearchURL(u string) Option {
	return func(s *Service) { s.searchURL = u }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewService(store ObjectStore, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		client:    &http.Client{Timeout: 10 * time.Second},
		searchURL: DefaultSearchURL,
		logger:    logger.With().Str("component", "images").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchForRecipe returns the public URL of an image matching query, or "" when none could be
// found or stored. Failures are logged, never returned.
func (s *Service) FetchForRecipe(ctx context.Context, query string) string {
	if s == nil || s.store == nil {
		return ""
	}

	key := KeyPrefix + SanitizeKey(query)
	if ok, err := s.store.Exists(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("check existing image")
	} else if ok {
		return s.store.URL(key)
	}

	data, err := s.find(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("image lookup failed")
		return ""
	}

	if err := s.store.Put(ctx, key, data, "image/jpeg"); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("upload image")
		return ""
	}
	s.logger.Info().Str("key", key).Msg("stored recipe image")
	return s.store.URL(key)
}

func (s *Service) find(ctx context.Context, query string) ([]byte, error) {
	page, err := s.fetch(ctx, s.searchURL+url.QueryEscape(query), "")
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	candidates := ExtractImageURLs(bytes.NewReader(page), maxCandidates)
	for _, candidate := range candidates {
		raw, err := s.fetch(ctx, candidate, "image/")
		if err != nil {
			s.logger.Debug().Err(err).Str("url", candidate).Msg("skip image candidate")
			continue
		}
		out, err := Normalize(raw)
		if err != nil {
			s.logger.Debug().Err(err).Str("url", candidate).Msg("skip image candidate")
			continue
		}
		return out, nil
	}
	return nil, ErrNoImage
}

func (s *Service) fetch(ctx context.Context, target, wantType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := strings.ToLower(resp.Header.Get("Content-Type")); wantType != "" && !strings.HasPrefix(ct, wantType) {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// SanitizeKey turns a free-text query into an object name of lowercase letters, digits and
// dashes, at most 50 characters before the .jpg suffix.
func SanitizeKey(query string) string {
	clean := nonKeyChars.ReplaceAllString(query, "")
	clean = spaces.ReplaceAllString(strings.TrimSpace(clean), "-")
	clean = dashes.ReplaceAllString(clean, "-")
	clean = strings.Trim(strings.ToLower(clean), "-")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	if clean == "" {
		clean = "recipe"
	}
	return clean + ".jpg"
}

// ExtractImageURLs pulls up to limit image URLs out of a search result page. Original-size
// URLs embedded in scripts win; plain <img> sources are the fallback.
func ExtractImageURLs(r io.Reader, limit int) []string {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	var scripts, imgs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					for _, m := range originalURL.FindAllStringSubmatch(n.FirstChild.Data, -1) {
						scripts = append(scripts, unescape(m[1]))
					}
				}
			case "img":
				for _, attr := range n.Attr {
					if attr.Key == "src" && !strings.Contains(strings.ToLower(attr.Val), "google") {
						imgs = append(imgs, attr.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := collect(scripts, limit)
	if len(out) == 0 {
		out = collect(imgs, limit)
	}
	return out
}

func collect(urls []string, limit int) []string {
	var out []string
	for _, u := range urls {
		if len(out) >= limit {
			break
		}
		if isImageURL(u) {
			out = append(out, u)
		}
	}
	return out
}

func isImageURL(u string) bool {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return false
	}
	lower := strings.ToLower(u)
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func unescape(s string) string {
	return strings.NewReplacer(`\u003d`, "=", `\u0026`, "&", `\/`, "/").Replace(s)
}

// Normalize decodes an image, flattens transparency onto white, scales it down to at most 800px
// wide and re-encodes it as JPEG.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if src.Bounds().Dx() > maxWidth {
		src = resize.Resize(maxWidth, 0, src, resize.Lanczos3)
	}

	bounds := src.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
