package scanning

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-reader/internal/extract"
	"github.com/zombor/receipt-reader/internal/geometry"
)

// Tesseract implements Recognizer with a local tesseract installation
type Tesseract struct {
	mu            sync.Mutex
	client        *gosseract.Client
	minConfidence float64
}

// TesseractConfig holds tesseract configuration
type TesseractConfig struct {
	// TessdataPrefix is the models directory; empty uses TESSDATA_PREFIX
	TessdataPrefix string
	// Languages are tesseract language codes, e.g. "ita" or "eng"
	Languages []string
	// MinConfidence drops words tesseract is less sure about (0-100)
	MinConfidence float64
}

// NewTesseract creates a new tesseract Recognizer
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		client.SetTessdataPrefix(cfg.TessdataPrefix)
	}
	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("setting tesseract language: %w", err)
		}
	}

	return &Tesseract{
		client:        client,
		minConfidence: cfg.MinConfidence,
	}, nil
}

// Recognize returns one fragment per word tesseract found
func (t *Tesseract) Recognize(pngData []byte) (*extract.FragmentSet, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("reading image size: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("reading word boxes: %w", err)
	}

	set := fragmentsFromBoxes(boxes, t.minConfidence)
	set.Width = float64(cfg.Width)
	set.Height = float64(cfg.Height)
	slog.Debug("Recognized words", "words", len(boxes), "fragments", len(set.Fragments))
	return set, nil
}

// Close closes the tesseract client
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// fragmentsFromBoxes keeps the non-blank words at or above minConfidence
func fragmentsFromBoxes(boxes []gosseract.BoundingBox, minConfidence float64) *extract.FragmentSet {
	set := &extract.FragmentSet{Fragments: make([]extract.Fragment, 0, len(boxes))}
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < minConfidence {
			continue
		}
		set.Fragments = append(set.Fragments, extract.Fragment{
			ID:    len(set.Fragments),
			Value: word,
			Box:   rectFromImage(b.Box),
		})
	}
	return set
}

func rectFromImage(r image.Rectangle) geometry.Rect {
	r = r.Canon()
	return geometry.Rect{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Right:  float64(r.Max.X),
		Bottom: float64(r.Max.Y),
	}
}
