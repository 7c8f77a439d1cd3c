package testgen

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/weitinglin/tingxie/internal/domain"
)

// poolSource serves a fixed pool regardless of the requested lessons.
type poolSource []domain.CharacterEntry

func (p poolSource) CharactersFromLessons([]string) []domain.CharacterEntry {
	pool := make([]domain.CharacterEntry, len(p))
	copy(pool, p)
	return pool
}

func entry(char, zhuyin string, words ...string) domain.CharacterEntry {
	return domain.CharacterEntry{Char: char, Zhuyin: zhuyin, Words: words, LessonTitle: "第一課"}
}

func fixedEngine(source Source) *Engine {
	return NewWithRand(source, rand.New(rand.NewSource(1)))
}

func TestGenerate(t *testing.T) {
	t.Run("empty pool fails", func(t *testing.T) {
		_, err := fixedEngine(poolSource{}).Generate([]string{"x_y_z_1"}, 5, domain.TestChar)
		if !errors.Is(err, ErrEmptySource) {
			t.Errorf("Expected ErrEmptySource, got %v", err)
		}
	})

	t.Run("length is min of count and pool size", func(t *testing.T) {
		source := poolSource{
			entry("水", "ㄕㄨㄟˇ", "水果"),
			entry("火", "ㄏㄨㄛˇ", "火車"),
			entry("山", "ㄕㄢ", "高山"),
		}
		cases := []struct {
			name     string
			count    int
			expected int
		}{
			{"fewer than pool", 2, 2},
			{"exactly pool", 3, 3},
			{"more than pool", 10, 3},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				questions, err := fixedEngine(source).Generate([]string{"a_b_c_1"}, tc.count, domain.TestChar)
				if err != nil {
					t.Fatalf("Generate failed: %v", err)
				}
				if len(questions) != tc.expected {
					t.Errorf("Expected %d questions, got %d", tc.expected, len(questions))
				}
			})
		}
	})

	t.Run("ids are positions", func(t *testing.T) {
		source := poolSource{
			entry("水", "ㄕㄨㄟˇ"),
			entry("火", "ㄏㄨㄛˇ"),
			entry("山", "ㄕㄢ"),
		}
		questions, err := fixedEngine(source).Generate(nil, 3, domain.TestZhuyin)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for i, q := range questions {
			if q.ID != i {
				t.Errorf("Question %d has id %d", i, q.ID)
			}
			if q.Type != domain.QuestionZhuyin {
				t.Errorf("Question %d: expected zhuyin type in a zhuyin run, got %s", i, q.Type)
			}
		}
	})

	t.Run("same seed gives the same order", func(t *testing.T) {
		source := poolSource{
			entry("水", "ㄕㄨㄟˇ"),
			entry("火", "ㄏㄨㄛˇ"),
			entry("山", "ㄕㄢ"),
			entry("月", "ㄩㄝˋ"),
			entry("日", "ㄖˋ"),
		}
		a, err := NewWithRand(source, rand.New(rand.NewSource(7))).Generate(nil, 5, domain.TestChar)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		b, err := NewWithRand(source, rand.New(rand.NewSource(7))).Generate(nil, 5, domain.TestChar)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for i := range a {
			if a[i].TargetChar != b[i].TargetChar {
				t.Fatalf("Position %d differs: %s vs %s", i, a[i].TargetChar, b[i].TargetChar)
			}
		}
	})

	t.Run("mixed mode produces both types", func(t *testing.T) {
		source := make(poolSource, 0, 50)
		for i := 0; i < 50; i++ {
			source = append(source, entry("水", "ㄕㄨㄟˇ"))
		}
		questions, err := fixedEngine(source).Generate(nil, 50, domain.TestMixed)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		var chars, zhuyins int
		for _, q := range questions {
			switch q.Type {
			case domain.QuestionChar:
				chars++
			case domain.QuestionZhuyin:
				zhuyins++
			default:
				t.Fatalf("Unexpected question type %q", q.Type)
			}
		}
		if chars == 0 || zhuyins == 0 {
			t.Errorf("Expected both types in a 50-question mixed run, got %d char / %d zhuyin", chars, zhuyins)
		}
	})

	t.Run("context word contains the target", func(t *testing.T) {
		source := poolSource{
			entry("水", "ㄕㄨㄟˇ", "水果", "汽水"),
			entry("火", "ㄏㄨㄛˇ", "營火晚會", "火車"),
			entry("山", "ㄕㄢ"),
		}
		questions, err := fixedEngine(source).Generate(nil, 3, domain.TestChar)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for _, q := range questions {
			if !strings.Contains(q.ContextWord, q.TargetChar) && q.ContextWord != q.TargetChar {
				t.Errorf("Context word %q does not contain %q", q.ContextWord, q.TargetChar)
			}
		}
	})

	t.Run("single known character scenario", func(t *testing.T) {
		source := poolSource{entry("水", "ㄕㄨㄟˇ", "水果", "汽水")}
		questions, err := fixedEngine(source).Generate([]string{"L1"}, 1, domain.TestChar)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(questions) != 1 {
			t.Fatalf("Expected exactly one question, got %d", len(questions))
		}
		q := questions[0]
		if q.TargetChar != "水" || q.ContextWord != "水果" || q.Type != domain.QuestionChar {
			t.Errorf("Unexpected question: %+v", q)
		}
	})
}

func TestContextWord(t *testing.T) {
	cases := []struct {
		name     string
		char     string
		words    []string
		expected string
	}{
		{"no words falls back to the character", "水", nil, "水"},
		{"prefers the first two-character word", "水", []string{"水災警報", "汽水", "水果"}, "汽水"},
		{"otherwise the first word", "火", []string{"營火晚會", "火災警報"}, "營火晚會"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContextWord(tc.char, tc.words); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestPromptHTML(t *testing.T) {
	cases := []struct {
		name     string
		question domain.Question
		expected string
	}{
		{
			name: "char question shows the zhuyin",
			question: domain.Question{
				Type: domain.QuestionChar, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "汽水",
			},
			expected: `汽<span class="test-item">ㄕㄨㄟˇ</span>`,
		},
		{
			name: "zhuyin question shows the character",
			question: domain.Question{
				Type: domain.QuestionZhuyin, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "水果",
			},
			expected: `<span class="test-item">水</span>果`,
		},
		{
			name: "only the first occurrence is replaced",
			question: domain.Question{
				Type: domain.QuestionZhuyin, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "水水",
			},
			expected: `<span class="test-item">水</span>水`,
		},
		{
			name: "word without the target renders bare",
			question: domain.Question{
				Type: domain.QuestionChar, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "火車",
			},
			expected: "火車",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PromptHTML(tc.question); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
