package indexing

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
)

// Snapshot format (versioned, little-endian):
//
//	[magic 'AIDX'] [u32 version] [16B build id] [i64 buildUnix] [u32 numDirs]
//	[u32 numPaths] { [u32 len] [path bytes] }*
//	[u32 numRoots] { directory }*
//
// directory:
//
//	[str name] [str path] [u32 n] { [str word] [u32 occ] }*  dir tokens
//	[bitmap files]
//	[u32 n] { [str word] [u32 occ] [bitmap] }*  stem postings
//	[u32 n] { [str word] [u32 occ] [bitmap] }*  ext postings
//	[u32 numChildren] { directory }*
//
// Every bitmap is a u32 byte length followed by a portable roaring bitmap.
const (
	snapshotMagic   = "AIDX"
	snapshotVersion = uint32(1)
	maxBlobLen      = 1 << 28
)

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// PersistSnapshot writes idx to path. The snapshot is written to a
// temporary file next to path and renamed over it, so a reader never sees a
// partial file and a failed write leaves the previous snapshot in place.
func PersistSnapshot(path string, idx *Index) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := WriteSnapshot(f, idx); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot %s: %w", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("failed to chmod snapshot %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", path, err)
	}
	return nil
}

// WriteSnapshot encodes idx to w.
func WriteSnapshot(w io.Writer, idx *Index) error {
	sw := &snapshotWriter{w: bufio.NewWriter(w)}
	sw.raw([]byte(snapshotMagic))
	sw.u32(snapshotVersion)
	sw.raw(idx.Meta.BuildID[:])
	sw.i64(idx.Meta.BuildUnixSec)
	sw.u32(uint32(idx.Meta.NumDirs))

	sw.u32(uint32(len(idx.Paths)))
	for _, p := range idx.Paths {
		sw.str(p)
	}
	sw.u32(uint32(len(idx.Roots)))
	for _, r := range idx.Roots {
		sw.directory(r)
	}
	if sw.err != nil {
		return sw.err
	}
	return sw.w.Flush()
}

// LoadSnapshot reads a snapshot persisted with PersistSnapshot.
func LoadSnapshot(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()
	idx, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return idx, nil
}

// ReadSnapshot decodes an Index from r.
func ReadSnapshot(r io.Reader) (*Index, error) {
	sr := &snapshotReader{r: bufio.NewReader(r)}
	magic := sr.raw(len(snapshotMagic))
	if sr.err == nil && string(magic) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, magic)
	}
	if v := sr.u32(); sr.err == nil && v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, v)
	}

	idx := &Index{}
	if id := sr.raw(len(uuid.UUID{})); sr.err == nil {
		copy(idx.Meta.BuildID[:], id)
	}
	idx.Meta.BuildUnixSec = sr.i64()
	idx.Meta.NumDirs = int(sr.u32())

	n := sr.count()
	idx.Paths = make([]string, 0, min(n, 1<<16))
	for i := 0; i < n && sr.err == nil; i++ {
		idx.Paths = append(idx.Paths, sr.str())
	}
	idx.Meta.NumFiles = len(idx.Paths)

	roots := sr.count()
	for i := 0; i < roots && sr.err == nil; i++ {
		idx.Roots = append(idx.Roots, sr.directory())
	}
	if sr.err != nil {
		return nil, sr.err
	}
	return idx, nil
}

type snapshotWriter struct {
	w   *bufio.Writer
	err error
}

func (sw *snapshotWriter) raw(b []byte) {
	if sw.err != nil {
		return
	}
	_, sw.err = sw.w.Write(b)
}

func (sw *snapshotWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	sw.raw(b[:])
}

func (sw *snapshotWriter) i64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	sw.raw(b[:])
}

func (sw *snapshotWriter) str(s string) {
	sw.u32(uint32(len(s)))
	sw.raw([]byte(s))
}

func (sw *snapshotWriter) token(t tokenizer.Token) {
	sw.str(t.Word)
	sw.u32(t.Occurrence)
}

func (sw *snapshotWriter) bitmap(pl PostingList) {
	if sw.err != nil {
		return
	}
	b, err := pl.Bitmap().ToBytes()
	if err != nil {
		sw.err = err
		return
	}
	sw.u32(uint32(len(b)))
	sw.raw(b)
}

func (sw *snapshotWriter) postings(m map[tokenizer.Token]PostingList) {
	tokens := make([]tokenizer.Token, 0, len(m))
	for t := range m {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, tokenizer.Token.Compare)

	sw.u32(uint32(len(tokens)))
	for _, t := range tokens {
		sw.token(t)
		sw.bitmap(m[t])
	}
}

func (sw *snapshotWriter) directory(d *Directory) {
	sw.str(d.Name)
	sw.str(d.Path)
	sw.u32(uint32(len(d.DirTokens)))
	for _, t := range d.DirTokens {
		sw.token(t)
	}
	sw.bitmap(d.Files)
	sw.postings(d.Stem)
	sw.postings(d.Ext)
	sw.u32(uint32(len(d.Children)))
	for _, c := range d.Children {
		sw.directory(c)
	}
}

type snapshotReader struct {
	r   *bufio.Reader
	err error
}

func (sr *snapshotReader) raw(n int) []byte {
	if sr.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(sr.r, b); err != nil {
		sr.err = fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		return nil
	}
	return b
}

func (sr *snapshotReader) u32() uint32 {
	b := sr.raw(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (sr *snapshotReader) i64() int64 {
	b := sr.raw(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// count reads a length prefix, rejecting values no valid snapshot holds.
func (sr *snapshotReader) count() int {
	n := sr.u32()
	if sr.err == nil && n > maxBlobLen {
		sr.err = fmt.Errorf("%w: length %d too large", ErrCorruptSnapshot, n)
		return 0
	}
	return int(n)
}

func (sr *snapshotReader) str() string {
	return string(sr.raw(sr.count()))
}

func (sr *snapshotReader) token() tokenizer.Token {
	return tokenizer.Token{Word: sr.str(), Occurrence: sr.u32()}
}

func (sr *snapshotReader) bitmap() PostingList {
	b := sr.raw(sr.count())
	if sr.err != nil {
		return nil
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(b); err != nil {
		sr.err = fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		return nil
	}
	return FromBitmap(bm)
}

func (sr *snapshotReader) postings() map[tokenizer.Token]PostingList {
	n := sr.count()
	m := make(map[tokenizer.Token]PostingList, min(n, 1024))
	for i := 0; i < n && sr.err == nil; i++ {
		t := sr.token()
		m[t] = sr.bitmap()
	}
	return m
}

func (sr *snapshotReader) directory() *Directory {
	d := &Directory{Name: sr.str(), Path: sr.str()}
	n := sr.count()
	for i := 0; i < n && sr.err == nil; i++ {
		d.DirTokens = append(d.DirTokens, sr.token())
	}
	d.Files = sr.bitmap()
	d.Stem = sr.postings()
	d.Ext = sr.postings()
	children := sr.count()
	d.Children = make([]*Directory, 0, min(children, 1024))
	for i := 0; i < children && sr.err == nil; i++ {
		d.Children = append(d.Children, sr.directory())
	}
	return d
}
