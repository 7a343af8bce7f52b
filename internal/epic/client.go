package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"timelapse/internal/config"
	"timelapse/internal/logging"
)

// dayFormat is the calendar-day layout used by the EPIC API.
const dayFormat = "2006-01-02"

// HTTPDoer describes the HTTP client used by the EPIC catalog client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Image is a catalog descriptor: a capture timestamp plus the image name the
// archive resolves to bytes. Immutable once returned.
type Image struct {
	Name string `json:"image"`
	Date string `json:"date"`
}

// CaptureDay returns the YYYY-MM-DD portion of the capture timestamp.
func (i Image) CaptureDay() string {
	day, _, _ := strings.Cut(strings.TrimSpace(i.Date), " ")
	return day
}

// Client queries the NASA EPIC catalog for day listings and image bytes.
type Client struct {
	baseURL    string
	archiveURL string
	collection string
	client     HTTPDoer
	cache      *DayCache
	logger     *slog.Logger
}

// NewClient constructs a catalog client. The cache may be nil, in which case
// every listing goes to the catalog. A nil doer falls back to a client with
// the configured request timeout.
func NewClient(cfg *config.Config, doer HTTPDoer, cache *DayCache, logger *slog.Logger) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: time.Duration(cfg.EPIC.RequestTimeout) * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.EPIC.BaseURL, "/"),
		archiveURL: strings.TrimRight(cfg.EPIC.ArchiveURL, "/"),
		collection: cfg.EPIC.Collection,
		client:     doer,
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, "epic"),
	}
}

// ImagesForDay returns the catalog listing for one calendar day, in the order
// the catalog reports it. A day without imagery (including any non-200
// response) yields an empty listing, not an error; transport failures
// propagate to the caller.
func (c *Client) ImagesForDay(ctx context.Context, day time.Time) ([]Image, error) {
	dayKey := day.Format(dayFormat)

	if c.cache != nil {
		images, ok, err := c.cache.Get(ctx, c.collection, dayKey)
		if err != nil {
			c.logger.Warn("day cache read failed", logging.String(logging.FieldDate, dayKey), logging.Error(err))
		} else if ok {
			return images, nil
		}
	}

	listURL := fmt.Sprintf("%s/%s/date/%s", c.baseURL, c.collection, dayKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query catalog for %s: %w", dayKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("catalog returned no imagery",
			logging.String(logging.FieldDate, dayKey),
			logging.Int("status_code", resp.StatusCode),
		)
		return nil, nil
	}

	var images []Image
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		return nil, fmt.Errorf("decode catalog listing for %s: %w", dayKey, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, c.collection, dayKey, images); err != nil {
			c.logger.Warn("day cache write failed", logging.String(logging.FieldDate, dayKey), logging.Error(err))
		}
	}
	return images, nil
}

// ImageURL builds the archive URL that resolves a descriptor to PNG bytes.
func (c *Client) ImageURL(img Image) (string, error) {
	day := img.CaptureDay()
	parts := strings.Split(day, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("descriptor %q has malformed capture date %q", img.Name, img.Date)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s/png/%s.png",
		c.archiveURL, c.collection, parts[0], parts[1], parts[2], img.Name), nil
}

// Download fetches the raw bytes for one descriptor. Any failure, including a
// non-200 archive response, is an error: a single lost image invalidates the
// whole sequence.
func (c *Client) Download(ctx context.Context, img Image) ([]byte, error) {
	imageURL, err := c.ImageURL(img)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image %s: %w", img.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image %s: archive returned %d", img.Name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", img.Name, err)
	}
	return data, nil
}
