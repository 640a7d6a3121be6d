package indexing

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex wraps every invariant violation reported by Validate.
var ErrInvalidIndex = errors.New("invalid index")

// Validate checks the invariants the query side relies on: every posting
// list is strictly increasing and in range, the file table has no
// duplicates, and the roots' file lists cover 0..N-1 exactly once.
func (idx *Index) Validate() error {
	n := len(idx.Paths)
	if idx.Meta.NumFiles != n {
		return fmt.Errorf("%w: meta reports %d files, table has %d", ErrInvalidIndex, idx.Meta.NumFiles, n)
	}
	mapper := NewPathIDMapper(idx.Paths)
	if mapper.Size() != n {
		return fmt.Errorf("%w: file table contains duplicate paths", ErrInvalidIndex)
	}

	seen := make([]bool, n)
	for _, root := range idx.Roots {
		for _, id := range root.Files {
			if int(id) >= n {
				return fmt.Errorf("%w: root %s references id %d beyond %d files", ErrInvalidIndex, root.Path, id, n)
			}
			if seen[id] {
				return fmt.Errorf("%w: id %d appears under more than one root", ErrInvalidIndex, id)
			}
			seen[id] = true
		}
	}
	for id, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: id %d (%s) is not under any root", ErrInvalidIndex, id, idx.Paths[id])
		}
	}

	var err error
	idx.Walk(func(d *Directory) bool {
		if err == nil {
			err = checkDirectory(d, n)
		}
		return err == nil
	})
	return err
}

func checkDirectory(d *Directory, n int) error {
	if err := checkPostings(d.Path, "files", d.Files, n); err != nil {
		return err
	}
	for t, pl := range d.Stem {
		if err := checkPostings(d.Path, "stem "+t.String(), pl, n); err != nil {
			return err
		}
	}
	for t, pl := range d.Ext {
		if err := checkPostings(d.Path, "ext "+t.String(), pl, n); err != nil {
			return err
		}
	}
	return nil
}

// checkPostings reports the first violation of the posting invariant.
func checkPostings(dir, name string, pl PostingList, n int) error {
	for i, id := range pl {
		if int(id) >= n {
			return fmt.Errorf("%w: %s %s: id %d out of range", ErrInvalidIndex, dir, name, id)
		}
		if i > 0 && pl[i-1] >= id {
			return fmt.Errorf("%w: %s %s: not strictly increasing at position %d", ErrInvalidIndex, dir, name, i)
		}
	}
	return nil
}
