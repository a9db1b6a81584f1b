package words

import (
	"strings"

	"github.com/matzehuels/statgrapher/pkg/errors"
)

// Source is the randomness a caption draws from.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// qualifierThreshold: the fourth category is appended when a uniform draw
// exceeds it, i.e. with probability 0.2.
const qualifierThreshold = 0.8

// Compose builds a caption by picking one word from each of categories 1-3
// and, one time in five, from category 4, joined by single spaces.
func Compose(r Source, b Bank) (string, error) {
	withQualifier := r.Float64() > qualifierThreshold
	n := Categories - 1
	if withQualifier {
		n = Categories
	}

	picked := make([]string, 0, n)
	for i := range n {
		if len(b[i]) == 0 {
			return "", errors.New(errors.ErrCodeInvalidWordBank, "category %d has no words", i+1)
		}
		picked = append(picked, b[i][r.IntN(len(b[i]))])
	}
	return strings.Join(picked, " "), nil
}
