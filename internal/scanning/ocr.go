package scanning

import (
	"fmt"
	"log/slog"

	"github.com/zombor/receipt-reader/internal/extract"
)

// OCR implements the Scanner interface with a Recognizer and the extraction engine
type OCR struct {
	recognizer Recognizer
	engine     *extract.Engine
}

// NewOCR creates a new OCR Scanner
func NewOCR(recognizer Recognizer, engine *extract.Engine) *OCR {
	return &OCR{
		recognizer: recognizer,
		engine:     engine,
	}
}

// ScanReceipt converts the image to PNG, recognizes its words and extracts the total and date
func (o *OCR) ScanReceipt(imageData []byte, contentType string) (*ReceiptData, error) {
	pngData, converted, err := toPNG(imageData, contentType)
	if err != nil {
		return nil, err
	}
	if converted {
		slog.Debug("Converted image to PNG", "content_type", contentType, "bytes", len(pngData))
	}

	set, err := o.recognizer.Recognize(pngData)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	result, err := o.engine.Analyze(*set)
	if err != nil {
		return nil, fmt.Errorf("analyzing fragments: %w", err)
	}

	return &ReceiptData{
		Fragments: *set,
		Result:    result,
	}, nil
}

// Close closes the recognizer
func (o *OCR) Close() error {
	return o.recognizer.Close()
}
