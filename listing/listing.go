// Package listing renders a paginated object listing as one JSON array,
// written incrementally page by page.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/kbukum/s3gate/storage"
)

// RawTimeFormat is the LastModified layout of unprettified records.
const RawTimeFormat = "2006-01-02T15:04:05Z"

// ErrStreamAborted is returned when a page fails after output has started.
// The response status is already committed at that point.
var ErrStreamAborted = errors.New("listing: stream aborted after output started")

// Record is one raw listing entry.
type Record struct {
	Key          string `json:"Key"`
	LastModified string `json:"LastModified"`
	Size         int64  `json:"Size"`
}

// PrettyRecord is one prettified listing entry.
type PrettyRecord struct {
	Key          string `json:"Key"`
	LastModified string `json:"LastModified"`
	Size         string `json:"Size"`
}

// Streamer writes listings. The zero value is ready to use.
type Streamer struct {
	// Now returns the current time for natural dates. Defaults to time.Now.
	Now func() time.Time
}

// NewStreamer returns a Streamer using the wall clock.
func NewStreamer() *Streamer {
	return &Streamer{Now: time.Now}
}

// Stream drains p into w as a JSON array and returns the number of records
// written. The first page is fetched before anything is written, so an error
// with zero bytes written is returned as-is. Later failures wrap
// ErrStreamAborted.
func (s *Streamer) Stream(ctx context.Context, w io.Writer, p storage.Pager, prettify bool) (int, error) {
	var page []storage.ObjectInfo
	if p.HasMorePages() {
		var err error
		if page, err = p.NextPage(ctx); err != nil {
			return 0, err
		}
	}

	flusher, _ := w.(http.Flusher)
	today := s.today()
	count := 0

	if _, err := io.WriteString(w, "["); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStreamAborted, err)
	}
	for {
		for _, obj := range page {
			b, err := s.encode(obj, prettify, today)
			if err != nil {
				return count, fmt.Errorf("%w: encode %s: %w", ErrStreamAborted, obj.Key, err)
			}
			if count > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return count, fmt.Errorf("%w: %w", ErrStreamAborted, err)
				}
			}
			if _, err := w.Write(b); err != nil {
				return count, fmt.Errorf("%w: %w", ErrStreamAborted, err)
			}
			count++
		}
		if flusher != nil {
			flusher.Flush()
		}
		if !p.HasMorePages() {
			break
		}
		if err := ctx.Err(); err != nil {
			return count, fmt.Errorf("%w: %w", ErrStreamAborted, err)
		}
		var err error
		if page, err = p.NextPage(ctx); err != nil {
			return count, fmt.Errorf("%w: %w", ErrStreamAborted, err)
		}
	}
	if _, err := io.WriteString(w, "]"); err != nil {
		return count, fmt.Errorf("%w: %w", ErrStreamAborted, err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return count, nil
}

func (s *Streamer) encode(obj storage.ObjectInfo, prettify bool, today time.Time) ([]byte, error) {
	if prettify {
		return json.Marshal(PrettyRecord{
			Key:          obj.Key,
			LastModified: NaturalDate(obj.LastModified, today),
			Size:         NaturalSize(obj.Size),
		})
	}
	return json.Marshal(Record{
		Key:          obj.Key,
		LastModified: obj.LastModified.UTC().Format(RawTimeFormat),
		Size:         obj.Size,
	})
}

func (s *Streamer) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC()
}

// naturalDateWindow is roughly five months.
const naturalDateWindow = 5 * 365 / 12

// NaturalSize renders n in decimal units. Sizes under 1 kB spell out the
// unit: "1 Byte", "42 Bytes".
func NaturalSize(n int64) string {
	switch {
	case n == 1:
		return "1 Byte"
	case n < 1000:
		return fmt.Sprintf("%d Bytes", max(n, 0))
	}
	return humanize.Bytes(uint64(n))
}

// NaturalDate renders t relative to today: "today", "yesterday" or
// "tomorrow"; "Jan 02" within about five months; "Jan 02 2006" otherwise.
// Both dates are compared in UTC at day granularity.
func NaturalDate(t, today time.Time) string {
	d := dayOf(t)
	days := int(d.Sub(dayOf(today)).Hours() / 24)
	switch {
	case days < -naturalDateWindow || days > naturalDateWindow:
		return d.Format("Jan 02 2006")
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	}
	return d.Format("Jan 02")
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
