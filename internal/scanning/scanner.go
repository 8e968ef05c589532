package scanning

import "github.com/zombor/receipt-reader/internal/extract"

// ReceiptData contains what was read from a receipt image
type ReceiptData struct {
	// Fragments is the OCR output the result was extracted from
	Fragments extract.FragmentSet `json:"fragments"`
	Result    *extract.Result     `json:"result"`
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt reads a receipt image/PDF and extracts its total and date
	ScanReceipt(imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}

// Recognizer turns an image into positioned text fragments
type Recognizer interface {
	// Recognize runs OCR over a PNG image
	Recognize(pngData []byte) (*extract.FragmentSet, error)
	// Close releases the OCR engine
	Close() error
}
