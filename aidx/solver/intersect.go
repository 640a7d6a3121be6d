package solver

// Unsigned is the set of identifier types a posting list may hold.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Gallop returns the smallest index p >= from with s[p] >= x, or len(s) if
// there is none. The probe distance doubles until it overshoots and the
// last gap is then halved, so the cost is logarithmic in p-from rather than
// linear.
func Gallop[T Unsigned](s []T, x T, from int) int {
	n := len(s)
	if from >= n || s[from] >= x {
		return from
	}

	// s[lo] < x throughout; hi is n or an index with s[hi] >= x.
	lo, step := from, 1
	hi := lo + step
	for hi < n && s[hi] < x {
		lo = hi
		step <<= 1
		hi = lo + step
	}
	if hi > n {
		hi = n
	}
	for lo+1 < hi {
		mid := int(uint(lo+hi) >> 1)
		if s[mid] < x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// Intersect appends the intersection of the sorted lists a and b to dst and
// returns the extended slice. dst may be a[:0]: elements are written no
// faster than a is consumed.
//
// Disjoint ranges are rejected without touching the elements. Otherwise the
// list with the smaller head gallops forward to the other's head, and the
// merge advances whichever side holds the smaller value by galloping to the
// larger one, so a short list against a long one costs
// O(short * log(long)) instead of O(short + long).
func Intersect[T Unsigned](dst, a, b []T) []T {
	if len(a) == 0 || len(b) == 0 {
		return dst
	}
	if a[len(a)-1] < b[0] || a[0] > b[len(b)-1] {
		return dst
	}

	i, j := 0, 0
	switch {
	case a[0] < b[0]:
		i = Gallop(a, b[0], 0)
	case b[0] < a[0]:
		j = Gallop(b, a[0], 0)
	}

	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i = Gallop(a, b[j], i+1)
		case a[i] > b[j]:
			j = Gallop(b, a[i], j+1)
		default:
			dst = append(dst, a[i])
			i++
			j++
		}
	}
	return dst
}
