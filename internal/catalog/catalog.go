package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/weitinglin/tingxie/internal/domain"
)

// ErrLessonNotFound is returned when a lesson id resolves to nothing.
var ErrLessonNotFound = errors.New("catalog: lesson not found")

// A lesson id is the underscore join of its coordinates, e.g.
// "一年級_上學期_康軒_1".
const idSeparator = "_"

// GradeGroup mirrors one entry of the words.json dataset: every lesson of
// one grade/semester/book edition.
type GradeGroup struct {
	Grade    string   `json:"grade"`
	Semester string   `json:"semester"`
	BookType string   `json:"book_type"`
	Lessons  []Lesson `json:"lessons"`
}

// Lesson is one chapter's worth of new characters.
type Lesson struct {
	Chapter       string      `json:"chapter"`
	Title         string      `json:"title"`
	NewCharacters []Character `json:"new_characters"`
}

// Character is one taught character with its context words.
type Character struct {
	Char   string   `json:"char"`
	Zhuyin string   `json:"zhuyin"`
	Words  []string `json:"words"`
}

// Catalog is the loaded dataset. It is read-only after Load/Parse; callers
// share one instance.
type Catalog struct {
	groups []GradeGroup
}

// Load reads and parses the dataset file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a words.json document.
func Parse(r io.Reader) (*Catalog, error) {
	var groups []GradeGroup
	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &Catalog{groups: groups}, nil
}

// MakeLessonID builds a lesson id from its coordinates.
func MakeLessonID(grade, semester, bookType, chapter string) string {
	return strings.Join([]string{grade, semester, bookType, chapter}, idSeparator)
}

// SplitLessonID breaks a lesson id back into its coordinates.
func SplitLessonID(id string) (grade, semester, bookType, chapter string, err error) {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 4 {
		return "", "", "", "", fmt.Errorf("malformed lesson id %q", id)
	}
	return parts[0], parts[1], parts[2], parts[3], nil
}

// LessonByID resolves a lesson id to its content.
func (c *Catalog) LessonByID(id string) (*Lesson, error) {
	grade, semester, bookType, chapter, err := SplitLessonID(id)
	if err != nil {
		return nil, err
	}
	for i := range c.groups {
		g := &c.groups[i]
		if g.Grade != grade || g.Semester != semester || g.BookType != bookType {
			continue
		}
		for j := range g.Lessons {
			if g.Lessons[j].Chapter == chapter {
				return &g.Lessons[j], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
}

// LessonTitle resolves a lesson id to its display title, empty for an
// unknown lesson.
func (c *Catalog) LessonTitle(id string) string {
	lesson, err := c.LessonByID(id)
	if err != nil {
		return ""
	}
	return lesson.Title
}

// Lessons lists every lesson's metadata in dataset order.
func (c *Catalog) Lessons() []domain.LessonMeta {
	var metas []domain.LessonMeta
	for _, g := range c.groups {
		for _, l := range g.Lessons {
			metas = append(metas, domain.LessonMeta{
				ID:       MakeLessonID(g.Grade, g.Semester, g.BookType, l.Chapter),
				Title:    l.Title,
				Grade:    g.Grade,
				Semester: g.Semester,
				BookType: g.BookType,
				Chapter:  l.Chapter,
			})
		}
	}
	return metas
}

// CharactersFromLessons flattens every character entry of the requested
// lessons into one pool, in request order. A lesson listed twice
// contributes its characters twice; unknown lessons contribute nothing.
func (c *Catalog) CharactersFromLessons(lessonIDs []string) []domain.CharacterEntry {
	var pool []domain.CharacterEntry
	for _, id := range lessonIDs {
		lesson, err := c.LessonByID(id)
		if err != nil {
			continue
		}
		for _, ch := range lesson.NewCharacters {
			pool = append(pool, domain.CharacterEntry{
				Char:        ch.Char,
				Zhuyin:      ch.Zhuyin,
				Words:       ch.Words,
				LessonID:    id,
				LessonTitle: lesson.Title,
			})
		}
	}
	return pool
}
