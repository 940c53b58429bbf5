package feed

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind names a feed the launcher displays.
type Kind string

const (
	KindPosts   Kind = "posts"
	KindPatrons Kind = "patrons"
)

// CacheKey is the persisted key for a feed's cached content.
func (k Kind) CacheKey() string {
	return "patreon." + string(k)
}

// ErrorMessage is the user-facing text shown when a feed cannot be loaded.
func (k Kind) ErrorMessage() string {
	switch k {
	case KindPosts:
		return "Unable to load latest news."
	case KindPatrons:
		return "Unable to retrieve Patron list."
	default:
		return fmt.Sprintf("Unable to load %s.", string(k))
	}
}

type Post struct {
	ID        string    `json:"id,omitempty" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Published time.Time `json:"published" db:"published"`
	URL       string    `json:"url" db:"url"`
	Tags      []string  `json:"tags"`
}

type CreatePostRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Published *time.Time `json:"published,omitempty"`
	URL       string     `json:"url"`
	Tags      []string   `json:"tags"`
}

// Validate reports ErrInvalidPost when a required field is missing.
func (r *CreatePostRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidPost)
	}
	return nil
}

type Tier string

const (
	TierSuperPatron Tier = "Super Patron"
	TierPatron      Tier = "Patron"
)

type Patron struct {
	Name string `json:"name" db:"name"`
	Tier Tier   `json:"tier" db:"tier"`
}

func (p Patron) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPatron)
	}
	if p.Tier != TierSuperPatron && p.Tier != TierPatron {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidPatron, p.Tier)
	}
	return nil
}

// SplitByTier groups patrons into super patrons and patrons, keeping order.
func SplitByTier(patrons []Patron) (super, regular []Patron) {
	for _, p := range patrons {
		if p.Tier == TierSuperPatron {
			super = append(super, p)
		} else {
			regular = append(regular, p)
		}
	}
	return super, regular
}

// CachedFeed is the persisted cache entry for one feed.
// Age is milliseconds since the Unix epoch at the time of the write.
type CachedFeed[T any] struct {
	Age     int64 `json:"age"`
	Content []T   `json:"content"`
}

// Freshness is the remote "last updated" signal, in seconds since the epoch.
// The value can be fractional on the wire.
type Freshness struct {
	LastUpdated float64 `json:"last_updated"`
}

// LastUpdatedMillis converts LastUpdated to the cache's millisecond unit.
func (f Freshness) LastUpdatedMillis() int64 {
	return int64(math.Round(f.LastUpdated * 1000))
}

// FreshnessAt builds a Freshness from a wall-clock time, keeping milliseconds.
func FreshnessAt(t time.Time) Freshness {
	if t.IsZero() {
		return Freshness{}
	}
	return Freshness{LastUpdated: float64(t.UnixMilli()) / 1000}
}

// PatreonResponse is the body of GET /api/patreon.
type PatreonResponse struct {
	Posts   []Post   `json:"posts"`
	Patrons []Patron `json:"patrons"`
}
