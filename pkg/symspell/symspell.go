// Package symspell implements the Symmetric Delete spelling correction
// algorithm with a prefix index.
//
// A dictionary term is indexed by every string obtainable from its first
// PrefixLength runes by deleting up to MaxEditDistance runes. A lookup
// generates the deletes of the input the same way and scans only the terms
// that share a delete, which keeps the candidate set small.
//
// Main Functions:
//
// - New: Creates an empty matcher
// - CreateDictionaryEntry: Adds or reinforces a term
// - LoadDictionary: Reads "term count" lines into the matcher
// - Lookup: Returns suggestions for an input within an edit distance
package symspell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Verbosity controls how many suggestions Lookup returns
type Verbosity int

const (
	// Top returns the single suggestion with the lowest distance,
	// ties broken by the highest count.
	Top Verbosity = iota
	// Closest returns every suggestion at the lowest distance found.
	Closest
	// All returns every suggestion within the maximum edit distance.
	All
)

// ErrDistanceTooLarge is returned when a lookup asks for a larger edit
// distance than the dictionary was indexed with.
var ErrDistanceTooLarge = errors.New("lookup edit distance exceeds dictionary edit distance")

// Suggestion is a dictionary term close to a lookup input
type Suggestion struct {
	Term     string // Dictionary term
	Distance int    // Edit distance from the input
	Count    int64  // Frequency count of the term
}

// SymSpell is an in-memory dictionary indexed for approximate lookup.
// It is not safe for concurrent writes; lookups after loading are read-only.
type SymSpell struct {
	maxEditDistance int
	prefixLength    int

	words     map[string]int64    // term -> count
	deletes   map[string][]string // delete -> terms
	maxLength int                 // longest term in runes
}

// New creates an empty SymSpell. prefixLength must be greater than
// maxEditDistance.
func New(maxEditDistance, prefixLength int) (*SymSpell, error) {
	if maxEditDistance < 0 {
		return nil, fmt.Errorf("max edit distance cannot be negative, got %d", maxEditDistance)
	}
	if prefixLength < 1 || prefixLength <= maxEditDistance {
		return nil, fmt.Errorf("prefix length must be greater than max edit distance, got %d", prefixLength)
	}
	return &SymSpell{
		maxEditDistance: maxEditDistance,
		prefixLength:    prefixLength,
		words:           make(map[string]int64),
		deletes:         make(map[string][]string),
	}, nil
}

// WordCount returns the number of distinct terms
func (s *SymSpell) WordCount() int { return len(s.words) }

// CreateDictionaryEntry adds term with count to the dictionary. Adding a
// known term increases its count. Terms with a count below 1 are ignored.
// It reports whether a new term was indexed.
func (s *SymSpell) CreateDictionaryEntry(term string, count int64) bool {
	if count <= 0 || term == "" {
		return false
	}

	if existing, ok := s.words[term]; ok {
		if existing > math.MaxInt64-count {
			s.words[term] = math.MaxInt64
		} else {
			s.words[term] = existing + count
		}
		return false
	}

	s.words[term] = count
	if n := runeLen(term); n > s.maxLength {
		s.maxLength = n
	}

	for del := range s.editsPrefix(term) {
		s.deletes[del] = append(s.deletes[del], term)
	}
	return true
}

// LoadDictionary reads whitespace-separated lines from r and adds the
// term at termIndex with the count at countIndex. Lines with too few
// fields or an unparsable count are skipped.
func (s *SymSpell) LoadDictionary(r io.Reader, termIndex, countIndex int) error {
	minFields := termIndex
	if countIndex > minFields {
		minFields = countIndex
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= minFields {
			continue
		}
		count, err := strconv.ParseInt(fields[countIndex], 10, 64)
		if err != nil {
			continue
		}
		s.CreateDictionaryEntry(fields[termIndex], count)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}
	return nil
}

// Lookup finds dictionary terms within maxEditDistance of input.
// Results are ordered by distance ascending, then count descending.
func (s *SymSpell) Lookup(input string, verbosity Verbosity, maxEditDistance int) ([]Suggestion, error) {
	if maxEditDistance > s.maxEditDistance {
		return nil, ErrDistanceTooLarge
	}

	var suggestions []Suggestion
	phrase := []rune(input)
	phraseLen := len(phrase)

	if phraseLen-maxEditDistance > s.maxLength {
		return suggestions, nil
	}

	if count, ok := s.words[input]; ok {
		suggestions = append(suggestions, Suggestion{Term: input, Distance: 0, Count: count})
		if verbosity != All {
			return suggestions, nil
		}
	}

	if maxEditDistance == 0 {
		return suggestions, nil
	}

	consideredDeletes := make(map[string]struct{})
	consideredSuggestions := map[string]struct{}{input: {}}

	maxEditDistance2 := maxEditDistance
	phrasePrefixLen := phraseLen
	candidates := []string{input}
	if phraseLen > s.prefixLength {
		phrasePrefixLen = s.prefixLength
		candidates[0] = string(phrase[:s.prefixLength])
	}

	for pointer := 0; pointer < len(candidates); pointer++ {
		candidate := candidates[pointer]
		candidateRunes := []rune(candidate)
		candidateLen := len(candidateRunes)
		lenDiff := phrasePrefixLen - candidateLen

		if lenDiff > maxEditDistance2 {
			if verbosity == All {
				continue
			}
			break
		}

		for _, suggestion := range s.deletes[candidate] {
			if suggestion == input {
				continue
			}
			suggestionRunes := []rune(suggestion)
			suggestionLen := len(suggestionRunes)

			if abs(suggestionLen-phraseLen) > maxEditDistance2 ||
				suggestionLen < candidateLen ||
				(suggestionLen == candidateLen && suggestion != candidate) {
				continue
			}
			suggestionPrefixLen := suggestionLen
			if suggestionPrefixLen > s.prefixLength {
				suggestionPrefixLen = s.prefixLength
			}
			if suggestionPrefixLen > phrasePrefixLen && suggestionPrefixLen-candidateLen > maxEditDistance2 {
				continue
			}

			var distance int
			switch {
			case candidateLen == 0:
				distance = phraseLen
				if suggestionLen > distance {
					distance = suggestionLen
				}
				if distance > maxEditDistance2 || !markNew(consideredSuggestions, suggestion) {
					continue
				}
			case suggestionLen == 1:
				distance = phraseLen
				if containsRune(phrase, suggestionRunes[0]) {
					distance = phraseLen - 1
				}
				if distance > maxEditDistance2 || !markNew(consideredSuggestions, suggestion) {
					continue
				}
			default:
				if verbosity != All && !s.deleteInSuggestionPrefix(candidateRunes, suggestionRunes) {
					continue
				}
				if !markNew(consideredSuggestions, suggestion) {
					continue
				}
				distance = osaDistance(phrase, suggestionRunes, maxEditDistance2)
				if distance < 0 {
					continue
				}
			}

			if distance > maxEditDistance2 {
				continue
			}

			item := Suggestion{Term: suggestion, Distance: distance, Count: s.words[suggestion]}
			if len(suggestions) > 0 {
				switch verbosity {
				case Closest:
					if distance < maxEditDistance2 {
						suggestions = suggestions[:0]
					}
				case Top:
					if distance < maxEditDistance2 || item.Count > suggestions[0].Count {
						maxEditDistance2 = distance
						suggestions[0] = item
					}
					continue
				}
			}
			if verbosity != All {
				maxEditDistance2 = distance
			}
			suggestions = append(suggestions, item)
		}

		if lenDiff < maxEditDistance && candidateLen <= s.prefixLength {
			if verbosity != All && lenDiff >= maxEditDistance2 {
				continue
			}
			for i := 0; i < candidateLen; i++ {
				del := deleteAt(candidateRunes, i)
				if markNew(consideredDeletes, del) {
					candidates = append(candidates, del)
				}
			}
		}
	}

	if len(suggestions) > 1 {
		sort.SliceStable(suggestions, func(i, j int) bool {
			if suggestions[i].Distance != suggestions[j].Distance {
				return suggestions[i].Distance < suggestions[j].Distance
			}
			return suggestions[i].Count > suggestions[j].Count
		})
	}
	return suggestions, nil
}

// deleteInSuggestionPrefix checks whether the runes of del appear in order
// within the indexed prefix of suggestion.
func (s *SymSpell) deleteInSuggestionPrefix(del, suggestion []rune) bool {
	if len(del) == 0 {
		return true
	}
	suggestionLen := len(suggestion)
	if s.prefixLength < suggestionLen {
		suggestionLen = s.prefixLength
	}
	j := 0
	for _, r := range del {
		for j < suggestionLen && r != suggestion[j] {
			j++
		}
		if j == suggestionLen {
			return false
		}
	}
	return true
}

// editsPrefix returns every delete of the term's prefix within the max
// edit distance, including the prefix itself.
func (s *SymSpell) editsPrefix(term string) map[string]struct{} {
	runes := []rune(term)
	set := make(map[string]struct{})
	if len(runes) <= s.maxEditDistance {
		set[""] = struct{}{}
	}
	if len(runes) > s.prefixLength {
		runes = runes[:s.prefixLength]
	}
	set[string(runes)] = struct{}{}
	s.edits(runes, 0, set)
	return set
}

func (s *SymSpell) edits(word []rune, distance int, set map[string]struct{}) {
	distance++
	if len(word) <= 1 || distance > s.maxEditDistance {
		return
	}
	for i := range word {
		del := deleteAt(word, i)
		if _, ok := set[del]; ok {
			continue
		}
		set[del] = struct{}{}
		if distance < s.maxEditDistance {
			s.edits([]rune(del), distance, set)
		}
	}
}

func deleteAt(word []rune, i int) string {
	var b strings.Builder
	b.Grow(len(word))
	for j, r := range word {
		if j != i {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func markNew(set map[string]struct{}, key string) bool {
	if _, ok := set[key]; ok {
		return false
	}
	set[key] = struct{}{}
	return true
}

func containsRune(runes []rune, r rune) bool {
	for _, x := range runes {
		if x == r {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return len([]rune(s))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
