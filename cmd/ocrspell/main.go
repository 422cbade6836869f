// ocrspell is a command-line tool that detects text in an image with Google
// Cloud Vision, corrects the spelling of the detected words against a
// frequency dictionary and caches both the raw and the corrected response.
//
// Configuration:
//
// The tool reads a YAML configuration file:
//
//	provider: vision            # vision, documentai or tesseract
//	vision:
//	  endpoint: ""              # optional regional endpoint
//	  credentials_file: ""      # defaults to GOOGLE_APPLICATION_CREDENTIALS
//	  max_retries: 2
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//	tesseract:
//	  languages: [eng]
//	cache_dir: cache            # processed responses; cache/<provider> for documentai and tesseract
//	raw_dir: cache/raw          # provider responses; defaults to <cache_dir>/raw
//	dictionary_path: cache/dictionary.txt
//	wordfreq_dir: wordfreq      # holds large_en.msgpack.gz, used to build the dictionary
//	modifications:
//	  Wrold: World
//	log:
//	  level: info
//	  format: pretty
//
// Usage:
//
//	ocrspell -config config.yml -image scan.png [options]
//
// Output options:
//
//	-text string       Path to save the corrected words as text
//	-lines             Keep detected line breaks in the -text output
//	-hocr string       Path to save hOCR output
//	-output string     Path to save a searchable PDF of the image
//	-debug-api string  Path to save the corrected response as JSON
//
// Example:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/credentials.json
//	ocrspell -config config.yml -image receipt.png -text receipt.txt -output receipt.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/ocrspell/pkg/correct"
	"github.com/gardar/ocrspell/pkg/dictionary"
	"github.com/gardar/ocrspell/pkg/gdocai"
	"github.com/gardar/ocrspell/pkg/gvision"
	"github.com/gardar/ocrspell/pkg/hocr"
	"github.com/gardar/ocrspell/pkg/logging"
	"github.com/gardar/ocrspell/pkg/pdfocr"
	"github.com/gardar/ocrspell/pkg/tesseract"
	"github.com/gardar/ocrspell/pkg/textproc"
	"github.com/gardar/ocrspell/pkg/wordfreq"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file (required)")
	imagePath := flag.String("image", "", "Path to the input image (required)")

	textPath := flag.String("text", "", "Path to save the corrected text")
	lines := flag.Bool("lines", false, "Keep detected line breaks in the -text output")
	hocrPath := flag.String("hocr", "", "Path to save HOCR output")
	pdfPath := flag.String("output", "", "Path to save a searchable PDF")
	debugAPIPath := flag.String("debug-api", "", "Path to save the corrected response as JSON for debugging purposes")
	logLevel := flag.String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Deadline for the OCR request")

	flag.Parse()

	if *configPath == "" || *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -image flags are required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if _, err := logging.SetupLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log := logging.GetLogger("ocrspell")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, *imagePath, outputs{
		text:     *textPath,
		lines:    *lines,
		hocr:     *hocrPath,
		pdf:      *pdfPath,
		debugAPI: *debugAPIPath,
	}, log); err != nil {
		log.Error().Err(err).Str("image", *imagePath).Msg("Processing failed")
		os.Exit(1)
	}
}

type outputs struct {
	text, hocr, pdf, debugAPI string
	lines                     bool
}

func run(ctx context.Context, cfg *yamlConfig, imagePath string, out outputs, log zerolog.Logger) error {
	corrector, err := openCorrector(cfg, log)
	if err != nil {
		return err
	}

	annotator, remote, closeAnnotator, err := newAnnotator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAnnotator()

	proc, err := textproc.New(textproc.Config{
		CacheDir: cfg.CacheDir,
		RawDir:   cfg.RawDir,
	}, annotator, corrector,
		textproc.WithRemoteSource(remote),
		textproc.WithLogger(logging.GetLogger("textproc")),
	)
	if err != nil {
		return err
	}

	resp, source, err := proc.Process(ctx, imagePath)
	if err != nil {
		return err
	}
	fmt.Printf("%s: found in %s\n", imagePath, source)

	if out.debugAPI != "" {
		apiJSON, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to convert response to JSON: %w", err)
		}
		if err := os.WriteFile(out.debugAPI, apiJSON, 0644); err != nil {
			return fmt.Errorf("failed to write response JSON: %w", err)
		}
		log.Info().Str("path", out.debugAPI).Msg("Response JSON saved")
	}

	if out.text != "" && !out.lines {
		if err := writeText(out.text, textproc.TokenText(resp)+"\n", log); err != nil {
			return err
		}
	}

	if out.hocr == "" && out.pdf == "" && !(out.text != "" && out.lines) {
		return nil
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	w, h, err := hocr.ImageSize(img)
	if err != nil {
		return err
	}
	doc := hocr.FromAnnotations(resp, filepath.Base(imagePath), w, h)

	if out.text != "" && out.lines {
		if err := writeText(out.text, hocr.ExtractHOCRText(doc), log); err != nil {
			return err
		}
	}

	if out.hocr != "" {
		html, err := hocr.GenerateHOCRDocument(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.hocr, []byte(html), 0644); err != nil {
			return fmt.Errorf("failed to write HOCR output: %w", err)
		}
		log.Info().Str("path", out.hocr).Msg("HOCR saved")
	}

	if out.pdf != "" {
		pdfBytes, err := pdfocr.AssembleWithOCR(doc, [][]byte{img}, pdfocr.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to create searchable PDF: %w", err)
		}
		if err := os.WriteFile(out.pdf, pdfBytes, 0644); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		log.Info().Str("path", out.pdf).Msg("Searchable PDF saved")
	}
	return nil
}

func writeText(path, text string, log zerolog.Logger) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	log.Info().Str("path", path).Msg("Corrected text saved")
	return nil
}

// openCorrector builds the dictionary on first run and loads it
func openCorrector(cfg *yamlConfig, log zerolog.Logger) (*correct.Corrector, error) {
	var corpus dictionary.Corpus
	var opts []dictionary.Option

	if _, err := os.Stat(cfg.DictionaryPath); os.IsNotExist(err) && cfg.WordfreqDir != "" {
		c, err := wordfreq.Open(cfg.WordfreqDir)
		if err != nil {
			return nil, err
		}
		corpus = c

		log.Info().Str("path", cfg.DictionaryPath).Msg("Building dictionary")
		bar := progressbar.NewOptions(dictionary.DefaultSize,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("dictionary"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
		opts = append(opts, dictionary.WithProgress(bar))
	}

	corrector, err := correct.Open(cfg.DictionaryPath, corpus, cfg.Modifications, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare spelling dictionary: %w", err)
	}
	return corrector, nil
}

// newAnnotator creates the configured OCR provider, the source label of
// its results and its cleanup func
func newAnnotator(ctx context.Context, cfg *yamlConfig) (textproc.Annotator, textproc.Source, func(), error) {
	switch cfg.Provider {
	case providerDocumentAI:
		a, err := gdocai.New(&cfg.DocumentAI)
		return a, textproc.SourceGoogleCloud, func() {}, err
	case providerTesseract:
		return tesseract.New(cfg.Tesseract), textproc.SourceTesseract, func() {}, nil
	default:
		c, err := gvision.New(ctx, cfg.visionSettings())
		if err != nil {
			return nil, "", nil, err
		}
		return c, textproc.SourceGoogleCloud, func() { c.Close() }, nil
	}
}
