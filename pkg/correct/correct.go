// Package correct applies dictionary spelling correction to OCR word
// annotations.
//
// Each purely alphabetic token is looked up in a SymSpell dictionary, the
// closest term takes over the capitalization of the original token, and a
// caller supplied modification map may finally replace the word outright.
package correct

import (
	"fmt"
	"unicode"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/protobuf/proto"

	"github.com/gardar/ocrspell/pkg/dictionary"
	"github.com/gardar/ocrspell/pkg/symspell"
)

const (
	// MaxEditDistance bounds how far a suggestion may be from the token
	MaxEditDistance = 2
	// PrefixLength is the SymSpell prefix index length
	PrefixLength = 7
)

// Speller returns dictionary suggestions for a lowercase word.
// *symspell.SymSpell satisfies it.
type Speller interface {
	Lookup(input string, verbosity symspell.Verbosity, maxEditDistance int) ([]symspell.Suggestion, error)
}

// Corrector corrects OCR tokens. It does not change after construction.
type Corrector struct {
	speller       Speller
	modifications map[string]string
}

// New returns a Corrector using speller and the word substitutions in
// modifications, keyed by the corrected, case adjusted word.
func New(speller Speller, modifications map[string]string) *Corrector {
	mods := make(map[string]string, len(modifications))
	for k, v := range modifications {
		mods[k] = v
	}
	return &Corrector{speller: speller, modifications: mods}
}

// Open builds the dictionary at dictPath from corpus if it is missing,
// loads it and returns a Corrector over it.
func Open(dictPath string, corpus dictionary.Corpus, modifications map[string]string, opts ...dictionary.Option) (*Corrector, error) {
	if _, err := dictionary.Ensure(dictPath, corpus, opts...); err != nil {
		return nil, err
	}

	speller, err := symspell.New(MaxEditDistance, PrefixLength)
	if err != nil {
		return nil, err
	}
	if err := dictionary.Load(dictPath, speller); err != nil {
		return nil, err
	}
	if speller.WordCount() == 0 {
		return nil, fmt.Errorf("dictionary %s has no entries", dictPath)
	}
	return New(speller, modifications), nil
}

// Word returns the corrected form of a single token. Tokens that are not
// purely alphabetic are returned unchanged. A failed dictionary lookup is
// returned as an error.
func (c *Corrector) Word(w string) (string, error) {
	if !isAlpha(w) {
		return w, nil
	}

	word := w
	suggestions, err := c.speller.Lookup(lower(w), symspell.Top, MaxEditDistance)
	if err != nil {
		return "", fmt.Errorf("failed to look up %q: %w", w, err)
	}
	if len(suggestions) > 0 {
		word = suggestions[0].Term
	}
	word = matchCase(w, word)

	if replacement, ok := c.modifications[word]; ok {
		return replacement, nil
	}
	return word, nil
}

// Correct returns a copy of resp with every token annotation corrected.
// The first annotation holds the full text and is left as is. resp itself
// is never modified, also not when an error is returned.
func (c *Corrector) Correct(resp *visionpb.AnnotateImageResponse) (*visionpb.AnnotateImageResponse, error) {
	if resp == nil {
		return nil, fmt.Errorf("no annotation response provided")
	}

	out := proto.Clone(resp).(*visionpb.AnnotateImageResponse)
	annotations := out.GetTextAnnotations()
	for i := 1; i < len(annotations); i++ {
		word, err := c.Word(annotations[i].GetDescription())
		if err != nil {
			return nil, fmt.Errorf("failed to correct annotation %d: %w", i, err)
		}
		annotations[i].Description = word
	}
	return out, nil
}

// isAlpha reports whether s is non-empty and made of letters only
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
