package indexing

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// Bitmap returns the posting list as a roaring bitmap.
func (pl PostingList) Bitmap() *roaring.Bitmap {
	return roaring.BitmapOf(pl...)
}

// FromBitmap returns the members of bm as a PostingList. Bitmaps iterate in
// ascending order, so the result satisfies the posting invariant.
func FromBitmap(bm *roaring.Bitmap) PostingList {
	if bm == nil || bm.IsEmpty() {
		return PostingList{}
	}
	return PostingList(bm.ToArray())
}
