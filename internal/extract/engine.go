package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-reader/internal/geometry"
)

// ErrContractViolation marks input that breaks a documented precondition
var ErrContractViolation = errors.New("contract violation")

// FragmentSet is the OCR output for one image. Width and Height are the image
// size; zero means unknown.
type FragmentSet struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Fragments []Fragment `json:"fragments"`
}

// Result is what the engine extracted from one receipt
type Result struct {
	Amount decimal.NullDecimal
	// AmountScore is the confidence of Amount, 0 when there is none
	AmountScore int
	Date        *time.Time
	Scheme      string
	UpsideDown  bool
	Evidence    Evidence
}

func (r Result) MarshalJSON() ([]byte, error) {
	var date *string
	if r.Date != nil {
		s := r.Date.Format(time.DateOnly)
		date = &s
	}
	return json.Marshal(struct {
		Amount     *string  `json:"amount"`
		Date       *string  `json:"date"`
		Scheme     string   `json:"scheme"`
		Confidence int      `json:"confidence"`
		UpsideDown bool     `json:"upside_down"`
		Evidence   Evidence `json:"evidence"`
	}{
		Amount:     fixed(r.Amount),
		Date:       date,
		Scheme:     r.Scheme,
		Confidence: r.AmountScore,
		UpsideDown: r.UpsideDown,
		Evidence:   r.Evidence,
	})
}

// found reports whether anything was extracted
func (r *Result) found() bool {
	return r.Amount.Valid || r.Date != nil
}

// Engine extracts totals and dates from fragment sets. It is safe for
// concurrent use; analyses run one at a time.
type Engine struct {
	mu     sync.Mutex
	opts   Options
	scheme Scheme
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:   opts,
		scheme: SchemeFor(opts.Locale),
	}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Scheme returns the receipt scheme picked from the locale
func (e *Engine) Scheme() Scheme {
	return e.scheme
}

// Analyze extracts the total and the date of one receipt. Missing values are
// reported as unset fields, not as errors.
func (e *Engine) Analyze(set FragmentSet) (*Result, error) {
	if err := validate(set); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(set.Fragments) == 0 {
		return &Result{Scheme: e.scheme.Code}, nil
	}

	frame := geometry.Rect{Right: set.Width, Bottom: set.Height}
	if set.Width == 0 || set.Height == 0 {
		frame = geometry.Bounds(boxesOf(set.Fragments))
	}

	switch e.opts.Orientation {
	case OrientationForceUpsideDown:
		res := e.analyze(rotate(set.Fragments, frame))
		res.UpsideDown = true
		return res, nil
	case OrientationAllowUpsideDown:
		res := e.analyze(set.Fragments)
		if res.found() {
			return res, nil
		}
		slog.Debug("Nothing found, retrying upside down")
		rotated := e.analyze(rotate(set.Fragments, frame))
		if rotated.found() {
			rotated.UpsideDown = true
			return rotated, nil
		}
		return res, nil
	default:
		return e.analyze(set.Fragments), nil
	}
}

func (e *Engine) analyze(frags []Fragment) *Result {
	layout := Classify(frags)
	res := &Result{Scheme: e.scheme.Code}

	amounts := &amountResolver{layout: layout, scheme: e.scheme, opts: e.opts}
	res.Evidence = amounts.resolve()
	res.Amount, res.AmountScore = e.scheme.BestAmount(res.Evidence, e.opts.PriceEditing)

	if e.opts.DateSearch != DateSkip {
		res.Date = resolveDate(layout, e.scheme.DayFirst)
	}
	slog.Debug("Analyzed receipt", "fragments", layout.Len(), "amount_found", res.Amount.Valid, "amount", res.Amount.Decimal.StringFixed(2), "confidence", res.AmountScore, "date", res.Date)
	return res
}

func validate(set FragmentSet) error {
	if set.Fragments == nil {
		return fmt.Errorf("fragment list is nil: %w", ErrContractViolation)
	}
	if set.Width < 0 || set.Height < 0 {
		return fmt.Errorf("negative image size %vx%v: %w", set.Width, set.Height, ErrContractViolation)
	}
	for i, f := range set.Fragments {
		if !f.Box.IsValid() {
			return fmt.Errorf("fragment %d has inverted box %+v: %w", i, f.Box, ErrContractViolation)
		}
	}
	return nil
}

func rotate(frags []Fragment, frame geometry.Rect) []Fragment {
	out := make([]Fragment, len(frags))
	for i, f := range frags {
		out[i] = f
		out[i].Box = f.Box.Rotate180(frame)
	}
	return out
}
