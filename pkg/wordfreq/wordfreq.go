// Package wordfreq reads the word frequency lists published by the
// wordfreq project and answers rank and Zipf frequency queries.
//
// The data files are gzip compressed msgpack documents in the "cBpack"
// format: an array whose first element is a header map and whose i-th
// following element is the list of words with a frequency of 10^(-i/100),
// i.e. one bucket per centibel. Words inside a bucket keep the order of
// the source data.
package wordfreq

import (
	"compress/gzip"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnknownLanguage is returned when no data file exists for a language
	ErrUnknownLanguage = errors.New("no word frequency data for language")
	// ErrBadFormat is returned when a data file is not a cBpack document
	ErrBadFormat = errors.New("not a cBpack word frequency file")
)

// header is the first element of a cBpack document
type header struct {
	Format  string `msgpack:"format"`
	Version int    `msgpack:"version"`
}

// List is the frequency list of one language
type List struct {
	Words  []string       // Words in rank order
	bucket map[string]int // word -> centibel bucket
}

// Corpus serves frequency lists from a directory of wordfreq data files.
// Lists are read on first use and kept for the lifetime of the Corpus.
type Corpus struct {
	dir   string
	lists map[string]*List
}

// Open returns a Corpus reading data files from dir
func Open(dir string) (*Corpus, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open word frequency directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("word frequency path %s is not a directory", dir)
	}
	return &Corpus{dir: dir, lists: make(map[string]*List)}, nil
}

// TopN returns the n most frequent words of a language in rank order
func (c *Corpus) TopN(lang string, n int) ([]string, error) {
	list, err := c.list(lang)
	if err != nil {
		return nil, err
	}
	if n > len(list.Words) {
		n = len(list.Words)
	}
	out := make([]string, n)
	copy(out, list.Words[:n])
	return out, nil
}

// ZipfFrequency returns the Zipf frequency of word, the base-10 logarithm of
// its occurrences per billion words, rounded to two decimals. Unknown words
// and languages score 0.
func (c *Corpus) ZipfFrequency(word, lang string) float64 {
	list, err := c.list(lang)
	if err != nil {
		return 0
	}
	return list.ZipfFrequency(word)
}

// ZipfFrequency returns the Zipf frequency of word in this list
func (l *List) ZipfFrequency(word string) float64 {
	b, ok := l.bucket[strings.ToLower(word)]
	if !ok {
		return 0
	}
	zipf := 9 - float64(b)/100
	return math.Round(zipf*100) / 100
}

func (c *Corpus) list(lang string) (*List, error) {
	if l, ok := c.lists[lang]; ok {
		return l, nil
	}

	for _, size := range []string{"large", "small"} {
		path := filepath.Join(c.dir, fmt.Sprintf("%s_%s.msgpack.gz", size, lang))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		l, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		c.lists[lang] = l
		return l, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
}

// ReadFile reads a gzip compressed cBpack file
func ReadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word frequency file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFormat, path, err)
	}
	defer gz.Close()

	dec := msgpack.NewDecoder(gz)
	n, err := dec.DecodeArrayLen()
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: %s", ErrBadFormat, path)
	}

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFormat, path, err)
	}
	if h.Format != "cB" || h.Version != 1 {
		return nil, fmt.Errorf("%w: %s: format %q version %d", ErrBadFormat, path, h.Format, h.Version)
	}

	list := &List{bucket: make(map[string]int)}
	for i := 0; i < n-1; i++ {
		var words []string
		if err := dec.Decode(&words); err != nil {
			return nil, fmt.Errorf("%w: %s: bucket %d: %v", ErrBadFormat, path, i, err)
		}
		for _, w := range words {
			if _, seen := list.bucket[w]; seen {
				continue
			}
			list.bucket[w] = i
			list.Words = append(list.Words, w)
		}
	}
	return list, nil
}
