package candidate

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// Digits is the default alphabet.
const Digits = "0123456789"

// ErrEmptyAlphabet is returned when an alphabet has no characters.
var ErrEmptyAlphabet = errors.New("candidate: empty alphabet")

// Alphabet is an ordered set of characters. Enumeration order follows the
// order in which characters were first given.
type Alphabet struct {
	chars []rune
}

// New builds an Alphabet from s, dropping repeated characters.
func New(s string) (Alphabet, error) {
	seen := make(map[rune]bool, len(s))
	var chars []rune
	for _, r := range s {
		if seen[r] {
			continue
		}
		seen[r] = true
		chars = append(chars, r)
	}
	if len(chars) == 0 {
		return Alphabet{}, ErrEmptyAlphabet
	}
	return Alphabet{chars: chars}, nil
}

// Len returns the number of distinct characters.
func (a Alphabet) Len() int { return len(a.chars) }

func (a Alphabet) String() string { return string(a.chars) }

// Sequence yields every string of exactly length characters. Lengths below
// one yield nothing.
func (a Alphabet) Sequence(length int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if length < 1 || len(a.chars) == 0 {
			return
		}
		// odometer over alphabet indexes; idx[length-1] is the fastest wheel
		idx := make([]int, length)
		buf := make([]rune, length)
		for i := range buf {
			buf[i] = a.chars[0]
		}
		for {
			if !yield(string(buf)) {
				return
			}
			pos := length - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < len(a.chars) {
					buf[pos] = a.chars[idx[pos]]
					break
				}
				idx[pos] = 0
				buf[pos] = a.chars[0]
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}

// Count returns how many candidates lengths lo..hi produce for an alphabet
// of size n. It returns an error when the total does not fit in an int.
func Count(n, lo, hi int) (int, error) {
	total := 0
	for l := lo; l <= hi; l++ {
		c := PerLength(n, l)
		if c < 0 || c > math.MaxInt-total {
			return 0, fmt.Errorf("candidate: %d^%d overflows", n, l)
		}
		total += c
	}
	return total, nil
}

// PerLength returns n^length, or -1 when it overflows an int.
func PerLength(n, length int) int {
	if n < 1 || length < 1 {
		return 0
	}
	total := 1
	for i := 0; i < length; i++ {
		if total > math.MaxInt/n {
			return -1
		}
		total *= n
	}
	return total
}
