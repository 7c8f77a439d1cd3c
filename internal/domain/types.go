package domain

import "time"

// TestType selects what a practice run asks the user to produce.
type TestType string

const (
	TestChar   TestType = "char"   // write the character, zhuyin is shown
	TestZhuyin TestType = "zhuyin" // write the zhuyin, character is shown
	TestMixed  TestType = "mixed"  // each question flips a coin
)

// QuestionType is the per-question resolution of a TestType. It never
// holds "mixed"; mixed runs resolve to char or zhuyin question by question.
type QuestionType string

const (
	QuestionChar   QuestionType = "char"
	QuestionZhuyin QuestionType = "zhuyin"
)

// Question is one generated quiz item. Questions are ephemeral: they are
// handed to the front-end when a run starts and never stored as such. ID
// is the position within the generated set, not a global identifier.
type Question struct {
	ID           int          `json:"id"`
	Type         QuestionType `json:"type"`
	TargetChar   string       `json:"targetChar"`
	TargetZhuyin string       `json:"targetZhuyin"`
	ContextWord  string       `json:"contextWord"`
	LessonTitle  string       `json:"lessonTitle"`
}

// Session is one practice run. Immutable after creation except for
// deletion. TotalQuestions is the declared length of the generated set,
// not a count of answers actually saved.
type Session struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	LessonIDs      []string  `json:"lessonIds"`
	TestType       TestType  `json:"testType"`
	TotalQuestions int       `json:"totalQuestions"`
}

// Answer is one persisted handwriting submission. CanvasData holds the
// captured image bytes as written by the front-end (PNG).
type Answer struct {
	ID            string       `json:"id"`
	SessionID     string       `json:"sessionId"`
	QuestionIndex int          `json:"questionIndex"`
	QuestionType  QuestionType `json:"questionType"`
	TargetChar    string       `json:"targetChar"`
	TargetZhuyin  string       `json:"targetZhuyin"`
	ContextWord   string       `json:"contextWord"`
	CanvasData    []byte       `json:"-"`
	Timestamp     time.Time    `json:"timestamp"`
}

// MarkedItem is a user-flagged (type, char, zhuyin) triple, independent of
// any session or lesson. Its ID is derived from that triple, so marking is
// a set-membership fact: at most one row per triple per collection.
type MarkedItem struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	TargetChar   string       `json:"targetChar"`
	TargetZhuyin string       `json:"targetZhuyin"`
	ContextWord  string       `json:"contextWord"`
	Timestamp    time.Time    `json:"timestamp"`
}

// CharacterEntry is one character as taught by a lesson, with the words
// that give it context.
type CharacterEntry struct {
	Char        string   `json:"char"`
	Zhuyin      string   `json:"zhuyin"`
	Words       []string `json:"words"`
	LessonID    string   `json:"lessonId"`
	LessonTitle string   `json:"lessonTitle"`
}

// LessonMeta identifies a lesson in listings without its character data.
type LessonMeta struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Grade    string `json:"grade"`
	Semester string `json:"semester"`
	BookType string `json:"bookType"`
	Chapter  string `json:"chapter"`
}
