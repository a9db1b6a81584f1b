// Package words loads word banks and composes captions from them.
//
// A word file is plain text split into sections by header lines of the form
// *N*, where N is the 1-based category number. Every other non-blank line
// belongs to the most recent section; lines before the first header belong
// to category 1.
//
//	*1*
//	Quarterly
//	Median
//	*2*
//	cheese consumption
//	*3*
//	vs. divorce rate
//	*4*
//	(adjusted)
package words

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/statgrapher/pkg/errors"
)

// Categories is the number of ordered word categories in a bank.
const Categories = 4

var sectionRe = regexp.MustCompile(`^\*([0-9]+)\*$`)

// Bank holds the candidate words of each category in file order.
// It is read-only once loaded.
type Bank [Categories][]string

// Parse reads a word file from r.
func Parse(r io.Reader) (Bank, error) {
	var b Bank
	index := 0
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if m := sectionRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 || n > Categories {
				return Bank{}, errors.New(errors.ErrCodeInvalidWordBank,
					"line %d: section %s out of range 1-%d", lineNo, m[1], Categories)
			}
			index = n - 1
			continue
		}
		b[index] = append(b[index], line)
	}
	if err := sc.Err(); err != nil {
		return Bank{}, errors.Wrap(errors.ErrCodeInvalidWordBank, err, "read word file")
	}
	return b, b.Validate()
}

// Load reads and validates the word file at path.
func Load(path string) (Bank, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Bank{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "word file %s", path)
	}
	if err != nil {
		return Bank{}, errors.Wrap(errors.ErrCodeInvalidWordBank, err, "open word file %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// FromSlices builds a bank from in-memory categories.
func FromSlices(cats ...[]string) (Bank, error) {
	var b Bank
	if len(cats) != Categories {
		return b, errors.New(errors.ErrCodeInvalidWordBank, "want %d categories, got %d", Categories, len(cats))
	}
	for i, c := range cats {
		b[i] = append([]string(nil), c...)
	}
	return b, b.Validate()
}

// Validate reports the first empty category.
func (b Bank) Validate() error {
	for i, c := range b {
		if len(c) == 0 {
			return errors.New(errors.ErrCodeInvalidWordBank, "category %d has no words", i+1)
		}
	}
	return nil
}

// Len returns the total number of words.
func (b Bank) Len() int {
	n := 0
	for _, c := range b {
		n += len(c)
	}
	return n
}

// Hash is a stable content digest used in cache keys.
func (b Bank) Hash() string {
	h := sha256.New()
	for i, c := range b {
		io.WriteString(h, strconv.Itoa(i))
		for _, w := range c {
			io.WriteString(h, "\x00")
			io.WriteString(h, w)
		}
		io.WriteString(h, "\x01")
	}
	return hex.EncodeToString(h.Sum(nil))
}
