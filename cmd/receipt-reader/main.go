package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/text/language"

	"github.com/zombor/receipt-reader/internal/extract"
	"github.com/zombor/receipt-reader/internal/receipt"
	"github.com/zombor/receipt-reader/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// optionFlags are the raw extraction option values from the command line
type optionFlags struct {
	locale         string
	totalSearch    string
	dateSearch     string
	productsSearch string
	orientation    string
	priceEditing   string
}

// buildOptions turns option flags into engine options
func buildOptions(f optionFlags) (extract.Options, error) {
	opts := extract.DefaultOptions()

	locale, err := language.Parse(f.locale)
	if err != nil {
		return opts, fmt.Errorf("parsing locale %q: %w", f.locale, err)
	}
	opts.Locale = locale

	if opts.TotalSearch, err = extract.ParseTotalSearch(f.totalSearch); err != nil {
		return opts, err
	}
	if opts.DateSearch, err = extract.ParseDateSearch(f.dateSearch); err != nil {
		return opts, err
	}
	if opts.ProductsSearch, err = extract.ParseProductsSearch(f.productsSearch); err != nil {
		return opts, err
	}
	if opts.Orientation, err = extract.ParseOrientation(f.orientation); err != nil {
		return opts, err
	}
	if opts.PriceEditing, err = extract.ParsePriceEditing(f.priceEditing); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseLogLevel maps debug|info|warn|error to a slog level
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// splitLanguages splits a comma separated tesseract language list
func splitLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// extractFile analyzes one fragment document ("-" reads stdin) and writes
// the result as JSON
func extractFile(engine *extract.Engine, path string, in io.Reader, out io.Writer) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading fragments: %w", err)
	}

	set, err := scanning.DecodeFragments(data)
	if err != nil {
		return fmt.Errorf("decoding fragments: %w", err)
	}

	result, err := engine.Analyze(*set)
	if err != nil {
		return fmt.Errorf("analyzing fragments: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-reader")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		input          = fs.StringLong("input", "", "Fragment JSON file to analyze once and exit ('-' for stdin)")
		locale         = fs.StringLong("locale", "it-IT", "Locale suggesting the receipt scheme (BCP 47)")
		totalSearch    = fs.StringLong("total-search", "DEEP", "Total search: SKIP, NORMAL, DEEP or EXTENDED_SEARCH")
		dateSearch     = fs.StringLong("date-search", "NORMAL", "Date search: SKIP or NORMAL")
		productsSearch = fs.StringLong("products-search", "DEEP", "Price column search: SKIP, NORMAL or DEEP")
		orientation    = fs.StringLong("orientation", "NORMAL", "Orientation: NORMAL, ALLOW_UPSIDE_DOWN or FORCE_UPSIDE_DOWN")
		priceEditing   = fs.StringLong("price-editing", "ALLOW_STRICT", "Price editing: SKIP, ALLOW_STRICT or ALLOW_LOOSE")
		scannerType    = fs.StringLong("scanner", "tesseract", "Scanner type: 'tesseract' or 'none'")
		tessdata       = fs.StringLong("tessdata", "", "Tesseract models directory (defaults to TESSDATA_PREFIX)")
		ocrLanguage    = fs.StringLong("ocr-language", "ita,eng", "Comma separated tesseract languages")
		ocrConfidence  = fs.IntLong("ocr-min-confidence", 30, "Drop OCR words below this confidence (0-100)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_READER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts, err := buildOptions(optionFlags{
		locale:         *locale,
		totalSearch:    *totalSearch,
		dateSearch:     *dateSearch,
		productsSearch: *productsSearch,
		orientation:    *orientation,
		priceEditing:   *priceEditing,
	})
	if err != nil {
		slog.Error("Invalid extraction options", "error", err)
		os.Exit(1)
	}
	engine := extract.NewEngine(opts)

	// One-shot mode
	if *input != "" {
		if err := extractFile(engine, *input, os.Stdin, os.Stdout); err != nil {
			slog.Error("Failed to extract receipt", "input", *input, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize scanner based on type
	var scanner scanning.Scanner
	var closer io.Closer
	switch *scannerType {
	case "tesseract":
		slog.Info("Initializing tesseract scanner...", "languages", *ocrLanguage)
		recognizer, err := scanning.NewTesseract(scanning.TesseractConfig{
			TessdataPrefix: *tessdata,
			Languages:      splitLanguages(*ocrLanguage),
			MinConfidence:  float64(*ocrConfidence),
		})
		if err != nil {
			slog.Error("Failed to initialize tesseract", "error", err)
			os.Exit(1)
		}
		ocr := scanning.NewOCR(recognizer, engine)
		scanner = ocr
		closer = ocr
	case "none":
		slog.Info("Image scanning disabled")
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "tesseract or none")
		os.Exit(1)
	}

	// Initialize service
	receiptService := receipt.NewService(engine, scanner)

	// Initialize server
	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"scheme", engine.Scheme().Code,
		"locale", opts.Locale.String(),
	)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	if err := serve(server, addr, closer, sigChan); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// serve runs server on addr until it fails or stop fires. closer, when set,
// is closed on both paths.
func serve(server *receipt.Server, addr string, closer io.Closer, stop <-chan os.Signal) error {
	if closer != nil {
		defer closer.Close()
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start(addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-stop:
		slog.Info("Shutting down...")
		return nil
	}
}
