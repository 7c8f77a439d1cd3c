package mark

import (
	"strings"

	"github.com/weitinglin/tingxie/internal/domain"
)

// Kind names one of the two marking collections.
type Kind string

const (
	Starred      Kind = "starred"
	Questionable Kind = "questionable"
)

// Valid reports whether k is one of the two known collections.
func (k Kind) Valid() bool {
	return k == Starred || k == Questionable
}

// separator joins the identity fields. None of the fields can contain it:
// question types are fixed tokens and the char/zhuyin fields hold CJK and
// bopomofo runes, so plain concatenation is collision-free.
const separator = "|"

// Key derives the marking identity for a question. Only the question type,
// target character and zhuyin participate; the context word and lesson
// title are display data and two questions differing only in those are the
// same marked entity. Re-implementations must agree bit-for-bit, so the
// fields are joined in declaration order with a fixed separator and no
// normalization.
func Key(typ domain.QuestionType, char, zhuyin string) string {
	return strings.Join([]string{string(typ), char, zhuyin}, separator)
}

// KeyFor is Key applied to a question value.
func KeyFor(q domain.Question) string {
	return Key(q.Type, q.TargetChar, q.TargetZhuyin)
}
