package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zombor/receipt-reader/internal/extract"
	"github.com/zombor/receipt-reader/internal/scanning"
)

// ErrNoScanner is returned by Scan when no OCR engine is configured
var ErrNoScanner = errors.New("image scanning is not configured")

// Analyzer extracts the total and date from a fragment set
type Analyzer interface {
	Analyze(set extract.FragmentSet) (*extract.Result, error)
	Options() extract.Options
}

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles extraction requests
type Service struct {
	analyzer    Analyzer
	scanner     scanning.Scanner
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// scanner may be nil, in which case Scan returns ErrNoScanner.
func NewService(analyzer Analyzer, scanner scanning.Scanner) *Service {
	return &Service{
		analyzer:    analyzer,
		scanner:     scanner,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(analyzer Analyzer, scanner scanning.Scanner, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		analyzer:    analyzer,
		scanner:     scanner,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// 50 chars for base, plus extension
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// Options returns the extraction options requests are analyzed with
func (s *Service) Options() extract.Options {
	return s.analyzer.Options()
}

// Extract analyzes an already recognized fragment set
func (s *Service) Extract(set extract.FragmentSet) (*Receipt, error) {
	result, err := s.analyzer.Analyze(set)
	if err != nil {
		return nil, fmt.Errorf("analyzing fragments: %w", err)
	}

	return &Receipt{
		ID:            s.idGenerator.Generate(),
		FragmentCount: len(set.Fragments),
		Result:        result,
		CreatedAt:     s.timeSource.Now(),
	}, nil
}

// Scan recognizes an uploaded receipt image or PDF and analyzes it
func (s *Service) Scan(filename string, data []byte, contentType string) (*Receipt, error) {
	if s.scanner == nil {
		return nil, ErrNoScanner
	}

	receiptData, err := s.scanner.ScanReceipt(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	return &Receipt{
		ID:            s.idGenerator.Generate(),
		Filename:      sanitizeFilename(filename),
		ContentType:   contentType,
		FragmentCount: len(receiptData.Fragments.Fragments),
		Result:        receiptData.Result,
		Source:        &receiptData.Fragments,
		CreatedAt:     s.timeSource.Now(),
	}, nil
}
