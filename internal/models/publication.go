package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MediaStatusSuccess = "success"
	MediaStatusFailed  = "failed"
)

// StatusComingSoon marks results from marketplaces that are not
// integrated yet. It is informational, not a created resource.
const StatusComingSoon = "coming_soon"

// RemoteProduct is the marketplace's representation of the created
// product.
type RemoteProduct struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Handle    string   `json:"handle,omitempty"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

type MediaImage struct {
	ID               string `json:"id"`
	Alt              string `json:"alt"`
	MediaContentType string `json:"mediaContentType"`
	Status           string `json:"status"`
	URL              string `json:"url,omitempty"`
}

// MediaResult reports one image's fate. Results keep input order; a
// failed image never removes its slot.
type MediaResult struct {
	Filename string      `json:"filename"`
	Status   string      `json:"status"`
	Media    *MediaImage `json:"media,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// StubEcho is the payload returned by not-yet-implemented
// marketplaces.
type StubEcho struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageCount  int    `json:"imageCount"`
}

// PublishResult is the outcome of one publication request. For real
// marketplaces Product and Media are set; for stubs Status is
// "coming_soon" and Echo carries the input back.
type PublishResult struct {
	Product     *RemoteProduct `json:"product,omitempty"`
	Media       []MediaResult  `json:"media,omitempty"`
	TotalImages int            `json:"totalImages"`
	Status      string         `json:"status,omitempty"`
	Marketplace string         `json:"marketplace,omitempty"`
	Message     string         `json:"message,omitempty"`
	Echo        *StubEcho      `json:"data,omitempty"`
}

// FailedMediaCount counts media entries that did not attach.
func (r *PublishResult) FailedMediaCount() int {
	n := 0
	for _, m := range r.Media {
		if m.Status == MediaStatusFailed {
			n++
		}
	}
	return n
}

// PublishRecord is the audit row written by the worker for every
// publish event it consumes.
type PublishRecord struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key"`
	EventType    string    `json:"event_type" gorm:"not null"`
	Marketplace  string    `json:"marketplace" gorm:"not null"`
	RemoteID     string    `json:"remote_id"`
	Title        string    `json:"title"`
	ImageCount   int       `json:"image_count"`
	FailedImages int       `json:"failed_images"`
	Error        *string   `json:"error,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *PublishRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
