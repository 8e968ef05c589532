package receipt

import (
	"time"

	"github.com/zombor/receipt-reader/internal/extract"
)

// Receipt is the outcome of one extraction request
type Receipt struct {
	ID            string               `json:"id"`
	Filename      string               `json:"filename,omitempty"`
	ContentType   string               `json:"content_type,omitempty"`
	FragmentCount int                  `json:"fragment_count"`
	Result        *extract.Result      `json:"result"`
	Source        *extract.FragmentSet `json:"source,omitempty"` // OCR output, set for scanned images only
	CreatedAt     time.Time            `json:"created_at"`
}
