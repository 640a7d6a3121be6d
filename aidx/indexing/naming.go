package indexing

import (
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"
)

// OccurrenceSeparator joins a word and its occurrence in posting list names.
// A separator inside a word is written twice.
const OccurrenceSeparator = "#"

const escapedSeparator = OccurrenceSeparator + OccurrenceSeparator

// Kind selects the stem or the extension posting lists of a directory.
type Kind uint8

const (
	// KindStem selects the words of file name stems.
	KindStem Kind = iota
	// KindExt selects the extension words of file names.
	KindExt
)

func (k Kind) String() string {
	if k == KindExt {
		return "ext"
	}
	return "stem"
}

// Postings returns the token map of the given kind.
func (d *Directory) Postings(kind Kind) map[tokenizer.Token]PostingList {
	if kind == KindExt {
		return d.Ext
	}
	return d.Stem
}

// Names returns the posting lists of the given kind keyed by display name.
// A word that never repeats within this directory's lists is named by the
// word alone; a word seen with occurrence 1 or higher is named word#N for
// every occurrence, 0 included.
func (d *Directory) Names(kind Kind) map[string]PostingList {
	postings := d.Postings(kind)
	maxOcc := maxOccurrences(postings)
	names := make(map[string]PostingList, len(postings))
	for t, pl := range postings {
		names[TokenName(t, maxOcc[t.Word])] = pl
	}
	return names
}

// Lookup finds the posting list for a display name as produced by Names.
// Unknown names yield nil, and so does a bare word whose occurrences are
// numbered.
func (d *Directory) Lookup(kind Kind, name string) PostingList {
	postings := d.Postings(kind)
	t, explicit := ParseName(name)
	pl, ok := postings[t]
	if !ok || (!explicit && maxOccurrences(postings)[t.Word] > 0) {
		return nil
	}
	return pl
}

// TokenName renders t given the highest occurrence of its word in scope.
// Separators inside the word are doubled so that "a#1" the word and
// occurrence 1 of "a" get distinct names.
func TokenName(t tokenizer.Token, maxOccurrence uint32) string {
	word := strings.ReplaceAll(t.Word, OccurrenceSeparator, escapedSeparator)
	if maxOccurrence == 0 {
		return word
	}
	return word + OccurrenceSeparator + strconv.FormatUint(uint64(t.Occurrence), 10)
}

// ParseName reverses TokenName. A doubled separator is a literal one. A
// single separator followed by digits up to the end of name starts the
// occurrence suffix and makes the name explicit. Any other lone separator
// is kept as part of the word, so "c#" still names the word c#.
func ParseName(name string) (t tokenizer.Token, explicit bool) {
	var word strings.Builder
	word.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if !strings.HasPrefix(name[i:], OccurrenceSeparator) {
			word.WriteByte(name[i])
			continue
		}
		if strings.HasPrefix(name[i:], escapedSeparator) {
			word.WriteString(OccurrenceSeparator)
			i += len(escapedSeparator) - 1
			continue
		}
		if word.Len() > 0 {
			suffix := name[i+len(OccurrenceSeparator):]
			if occ, err := strconv.ParseUint(suffix, 10, 32); err == nil {
				return tokenizer.Token{Word: word.String(), Occurrence: uint32(occ)}, true
			}
		}
		word.WriteString(OccurrenceSeparator)
		i += len(OccurrenceSeparator) - 1
	}
	return tokenizer.Token{Word: word.String()}, false
}

func maxOccurrences(postings map[tokenizer.Token]PostingList) map[string]uint32 {
	maxOcc := make(map[string]uint32, len(postings))
	for t := range postings {
		if t.Occurrence > maxOcc[t.Word] {
			maxOcc[t.Word] = t.Occurrence
		} else if _, ok := maxOcc[t.Word]; !ok {
			maxOcc[t.Word] = 0
		}
	}
	return maxOcc
}
