package testgen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/weitinglin/tingxie/internal/domain"
)

// ErrEmptySource means the requested lessons yielded no characters to
// build questions from. A selection problem, not a system fault.
var ErrEmptySource = errors.New("testgen: no characters in selected lessons")

// Source supplies the character pool for a lesson selection.
type Source interface {
	CharactersFromLessons(lessonIDs []string) []domain.CharacterEntry
}

// Engine generates question sets. The random source is injected so tests
// can fix the seed; New seeds from the clock.
type Engine struct {
	source Source
	rand   *rand.Rand
}

// New creates an engine with a time-seeded random source.
func New(source Source) *Engine {
	return NewWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates an engine with the given random source.
func NewWithRand(source Source, r *rand.Rand) *Engine {
	return &Engine{source: source, rand: r}
}

// Generate builds the question set for a practice run: every character of
// every requested lesson goes into one pool (duplicates across lessons
// preserved), the pool is shuffled, and the first min(count, len) entries
// become questions in shuffled order. Asking for more questions than the
// pool holds returns the whole pool; an empty pool is ErrEmptySource.
func (e *Engine) Generate(lessonIDs []string, count int, mode domain.TestType) ([]domain.Question, error) {
	pool := e.source.CharactersFromLessons(lessonIDs)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptySource, lessonIDs)
	}

	e.shuffle(pool)

	n := count
	if n > len(pool) {
		n = len(pool)
	}

	questions := make([]domain.Question, 0, n)
	for i, entry := range pool[:n] {
		questions = append(questions, domain.Question{
			ID:           i,
			Type:         e.questionType(mode),
			TargetChar:   entry.Char,
			TargetZhuyin: entry.Zhuyin,
			ContextWord:  ContextWord(entry.Char, entry.Words),
			LessonTitle:  entry.LessonTitle,
		})
	}
	return questions, nil
}

// shuffle permutes the pool in place with a Fisher-Yates tail swap.
func (e *Engine) shuffle(pool []domain.CharacterEntry) {
	for i := len(pool) - 1; i > 0; i-- {
		j := e.rand.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

// questionType resolves the run mode for one question. Mixed mode flips a
// fair coin per question, independently; it does not balance the set.
func (e *Engine) questionType(mode domain.TestType) domain.QuestionType {
	if mode != domain.TestMixed {
		return domain.QuestionType(mode)
	}
	if e.rand.Float64() < 0.5 {
		return domain.QuestionChar
	}
	return domain.QuestionZhuyin
}

// ContextWord picks the display word for a character: the first
// two-character word in source order, else the first word, else the
// character standing alone.
func ContextWord(char string, words []string) string {
	if len(words) == 0 {
		return char
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) == 2 {
			return w
		}
	}
	return words[0]
}
