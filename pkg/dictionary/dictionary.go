// Package dictionary builds and loads the frequency dictionary used for
// spelling correction.
//
// The dictionary is a plain text file with one "word count" pair per line,
// most frequent word first. It is generated once from a word frequency
// corpus and reused afterwards.
package dictionary

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gardar/ocrspell/pkg/symspell"
)

const (
	// DefaultLanguage is the corpus language used for the dictionary
	DefaultLanguage = "en"
	// DefaultSize is the number of corpus words written to the dictionary
	DefaultSize = 82700
)

// Corpus provides ranked words and their Zipf frequencies
type Corpus interface {
	TopN(lang string, n int) ([]string, error)
	ZipfFrequency(word, lang string) float64
}

// Progress receives one Add call per written word.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

type options struct {
	lang     string
	size     int
	progress Progress
}

// Option configures Ensure
type Option func(*options)

// WithLanguage selects the corpus language
func WithLanguage(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// WithSize sets how many words are taken from the corpus
func WithSize(n int) Option {
	return func(o *options) { o.size = n }
}

// WithProgress reports build progress
func WithProgress(p Progress) Option {
	return func(o *options) { o.progress = p }
}

// Ensure builds the dictionary file at path from corpus unless it already
// exists. It reports whether the file was written.
func Ensure(path string, corpus Corpus, opts ...Option) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check dictionary: %w", err)
	}

	o := options{lang: DefaultLanguage, size: DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}

	if corpus == nil {
		return false, fmt.Errorf("dictionary %s is missing and no word frequency corpus is configured", path)
	}

	words, err := corpus.TopN(o.lang, o.size)
	if err != nil {
		return false, fmt.Errorf("failed to list corpus words: %w", err)
	}

	if err := write(path, words, corpus, o); err != nil {
		return false, err
	}
	return true, nil
}

// Count converts a Zipf frequency into an approximate occurrence count.
// Counts are never below 1 so every listed word stays in the dictionary.
func Count(zipf float64) int64 {
	c := math.Round(math.Pow(10, zipf))
	if c < 1 {
		return 1
	}
	if c >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(c)
}

func write(path string, words []string, corpus Corpus, o options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dictionary directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create dictionary: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "%s %d\n", word, Count(corpus.ZipfFrequency(word, o.lang))); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write dictionary: %w", err)
		}
		if o.progress != nil {
			if err := o.progress.Add(1); err != nil {
				tmp.Close()
				return fmt.Errorf("failed to report dictionary progress: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move dictionary into place: %w", err)
	}
	return nil
}

// Load reads the dictionary file at path into speller
func Load(path string, speller *symspell.SymSpell) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	if err := speller.LoadDictionary(f, 0, 1); err != nil {
		return fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	return nil
}
