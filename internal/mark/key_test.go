package mark

import (
	"testing"

	"github.com/weitinglin/tingxie/internal/domain"
)

func TestKey(t *testing.T) {
	t.Run("generates the canonical key", func(t *testing.T) {
		key := Key(domain.QuestionChar, "水", "ㄕㄨㄟˇ")
		expected := "char|水|ㄕㄨㄟˇ"
		if key != expected {
			t.Errorf("Expected key %q, but got %q", expected, key)
		}
	})

	t.Run("key is deterministic", func(t *testing.T) {
		if Key(domain.QuestionZhuyin, "火", "ㄏㄨㄛˇ") != Key(domain.QuestionZhuyin, "火", "ㄏㄨㄛˇ") {
			t.Error("Expected identical triples to produce the same key")
		}
	})

	t.Run("type participates in identity", func(t *testing.T) {
		if Key(domain.QuestionChar, "水", "ㄕㄨㄟˇ") == Key(domain.QuestionZhuyin, "水", "ㄕㄨㄟˇ") {
			t.Error("Expected different question types to produce different keys")
		}
	})

	t.Run("context word and lesson title are excluded", func(t *testing.T) {
		q1 := domain.Question{Type: domain.QuestionChar, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "水果", LessonTitle: "第一課"}
		q2 := domain.Question{Type: domain.QuestionChar, TargetChar: "水", TargetZhuyin: "ㄕㄨㄟˇ", ContextWord: "汽水", LessonTitle: "第五課"}
		if KeyFor(q1) != KeyFor(q2) {
			t.Error("Expected questions differing only in display fields to share a key")
		}
	})
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{Starred, Questionable} {
		if !k.Valid() {
			t.Errorf("Expected kind %q to be valid", k)
		}
	}
	if Kind("stars").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}
