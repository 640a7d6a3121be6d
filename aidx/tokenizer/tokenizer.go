// Package tokenizer splits file and directory names into occurrence-tagged
// word tokens. It performs no I/O.
//
// A filename is divided at its first "." into a stem and an extension part.
// The stem is cut into words at any of the configured delimiter strings;
// the extension part yields one token per "."-separated segment, so
// "a.tar.gz" carries the extension words "tar" and "gz".
package tokenizer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedName is returned for names that are not valid UTF-8 text.
var ErrMalformedName = errors.New("malformed name")

// Token is a normalized word plus the index of its appearance within one
// scope (stem, extension list or directory chain) of a single file.
// Occurrence 0 is the first appearance.
type Token struct {
	Word       string
	Occurrence uint32
}

// String renders the token as word#occurrence.
func (t Token) String() string {
	return t.Word + "#" + strconv.FormatUint(uint64(t.Occurrence), 10)
}

// Compare orders tokens by word, then occurrence.
func (t Token) Compare(o Token) int {
	if c := strings.Compare(t.Word, o.Word); c != 0 {
		return c
	}
	switch {
	case t.Occurrence < o.Occurrence:
		return -1
	case t.Occurrence > o.Occurrence:
		return 1
	}
	return 0
}

// FileTokens holds the tokens extracted from one filename.
type FileTokens struct {
	Stem []Token
	Ext  []Token
}

// Tokenizer splits names using a fixed delimiter set.
type Tokenizer struct {
	delimiters    []string
	caseSensitive bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithCaseSensitive disables lower-casing of words.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(t *Tokenizer) {
		t.caseSensitive = caseSensitive
	}
}

// New returns a Tokenizer splitting stems at any of delimiters.
// Empty and duplicate delimiters are dropped; longer delimiters are tried
// first so that "__" is consumed whole when "_" is also configured.
func New(delimiters []string, opts ...Option) *Tokenizer {
	ds := make([]string, 0, len(delimiters))
	for _, d := range delimiters {
		if d != "" && !slices.Contains(ds, d) {
			ds = append(ds, d)
		}
	}
	slices.SortStableFunc(ds, func(a, b string) int {
		return len(b) - len(a)
	})

	t := &Tokenizer{delimiters: ds}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Delimiters returns the effective delimiter set, longest first.
func (t *Tokenizer) Delimiters() []string {
	return slices.Clone(t.delimiters)
}

// Tokenize splits a filename (base name, no directory part) into stem and
// extension tokens.
func (t *Tokenizer) Tokenize(name string) (FileTokens, error) {
	if err := validate(name); err != nil {
		return FileTokens{}, err
	}

	stem, ext, _ := strings.Cut(name, ".")

	var ft FileTokens
	ft.Stem = tag(t.normalize(t.split(stem)))
	ft.Ext = tag(t.normalize(splitNonEmpty(ext, ".")))
	return ft, nil
}

// DirectoryTokens returns one token per directory segment, in order, with
// repeated segment names disambiguated by occurrence.
func (t *Tokenizer) DirectoryTokens(segments []string) ([]Token, error) {
	words := make([]string, 0, len(segments))
	for _, seg := range segments {
		if err := validate(seg); err != nil {
			return nil, err
		}
		if seg == "" {
			continue
		}
		words = append(words, seg)
	}
	return tag(t.normalize(words)), nil
}

// split cuts s at every delimiter. Adjacent delimiters collapse and empty
// fragments are dropped.
func (t *Tokenizer) split(s string) []string {
	if s == "" {
		return nil
	}
	if len(t.delimiters) == 0 {
		return []string{s}
	}

	var words []string
	start := 0
	for i := 0; i < len(s); {
		n := t.delimiterAt(s, i)
		if n == 0 {
			i++
			continue
		}
		if i > start {
			words = append(words, s[start:i])
		}
		i += n
		start = i
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}

// delimiterAt returns the length of the delimiter matching s at i, or 0.
func (t *Tokenizer) delimiterAt(s string, i int) int {
	for _, d := range t.delimiters {
		if strings.HasPrefix(s[i:], d) {
			return len(d)
		}
	}
	return 0
}

func (t *Tokenizer) normalize(words []string) []string {
	if t.caseSensitive {
		return words
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// tag assigns each word its occurrence index in order of appearance.
func tag(words []string) []Token {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]uint32, len(words))
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Word: w, Occurrence: seen[w]}
		seen[w]++
	}
	return tokens
}

func validate(name string) error {
	if !utf8.ValidString(name) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	return nil
}
