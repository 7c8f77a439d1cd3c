package practice

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/go-co-op/gocron"

	"github.com/weitinglin/tingxie/internal/catalog"
	"github.com/weitinglin/tingxie/internal/domain"
	"github.com/weitinglin/tingxie/internal/mark"
	"github.com/weitinglin/tingxie/internal/storage"
	"github.com/weitinglin/tingxie/internal/testgen"
)

// ErrNoMarkedItems means a marked-items run was requested over an empty
// collection.
var ErrNoMarkedItems = errors.New("practice: no marked items")

// markedRunTitle is the lesson label shown for questions rebuilt from a
// marked collection, which have no originating lesson.
const markedRunTitle = "標記題目"

// DatasetConfig says where the words dataset lives. When Repo is set the
// dataset is a file inside a git checkout kept under Dir; otherwise File
// is read directly.
type DatasetConfig struct {
	File string
	Repo string
	Dir  string
}

// path resolves the dataset file on disk.
func (d DatasetConfig) path() string {
	if d.Repo != "" {
		return filepath.Join(d.Dir, d.File)
	}
	return d.File
}

// Service binds question generation to the persistent store: it owns the
// run lifecycle (generate, create session, accrue answers, review,
// cascade delete) and the marked-item operations. Questions are handed to
// the caller when a run starts and never persisted; the store only sees
// the answers that come back, keyed by position into that list.
type Service struct {
	store   *storage.Store
	engine  *testgen.Engine
	dataset DatasetConfig

	mu        sync.RWMutex
	cat       *catalog.Catalog
	scheduler *gocron.Scheduler
}

// New creates a service over the given store. The catalog starts empty;
// call Reload or SyncDataset before generating questions.
func New(store *storage.Store, dataset DatasetConfig) *Service {
	s := &Service{store: store, dataset: dataset}
	s.engine = testgen.New(s)
	return s
}

// CharactersFromLessons serves the generator from the current catalog.
// Empty until the dataset has been loaded.
func (s *Service) CharactersFromLessons(lessonIDs []string) []domain.CharacterEntry {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat == nil {
		return nil
	}
	return cat.CharactersFromLessons(lessonIDs)
}

// Lessons lists the catalog's lessons for the picker UI.
func (s *Service) Lessons() []domain.LessonMeta {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat == nil {
		return nil
	}
	return cat.Lessons()
}

// Reload reads the dataset file and swaps it in.
func (s *Service) Reload() error {
	cat, err := catalog.Load(s.dataset.path())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	slog.Info("dataset loaded", "path", s.dataset.path(), "lessons", len(cat.Lessons()))
	return nil
}

// StartRun generates the question set for a lesson selection and creates
// the session recording it. The session captures the selection and the
// generated length; the questions themselves go back to the caller and
// are never stored.
func (s *Service) StartRun(lessonIDs []string, count int, mode domain.TestType) (*domain.Session, []domain.Question, error) {
	questions, err := s.engine.Generate(lessonIDs, count, mode)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.store.CreateSession(lessonIDs, mode, len(questions))
	if err != nil {
		return nil, nil, err
	}
	slog.Info("run started", "session", session.ID, "questions", len(questions), "mode", mode)
	return session, questions, nil
}

// StartMarkedRun rebuilds questions from a marked collection and opens a
// session for them. Each question keeps the type it was marked under; the
// session records the collection name in place of lesson ids.
func (s *Service) StartMarkedRun(kind mark.Kind) (*domain.Session, []domain.Question, error) {
	items, err := s.store.MarkedItems(kind)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoMarkedItems, kind)
	}

	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		questions = append(questions, domain.Question{
			ID:           i,
			Type:         item.Type,
			TargetChar:   item.TargetChar,
			TargetZhuyin: item.TargetZhuyin,
			ContextWord:  item.ContextWord,
			LessonTitle:  markedRunTitle,
		})
	}

	session, err := s.store.CreateSession([]string{string(kind)}, domain.TestMixed, len(questions))
	if err != nil {
		return nil, nil, err
	}
	slog.Info("marked run started", "session", session.ID, "kind", kind, "questions", len(questions))
	return session, questions, nil
}

// RecordAnswer saves one handwriting submission against a run. A failure
// is reported to the caller but does not end the run; the front-end moves
// on and the session simply has no row for that index.
func (s *Service) RecordAnswer(sessionID string, index int, q domain.Question, image []byte) (*domain.Answer, error) {
	answer, err := s.store.SaveAnswer(sessionID, index, q.Type, q.TargetChar, q.TargetZhuyin, q.ContextWord, image)
	if err != nil {
		slog.Error("answer save failed", "session", sessionID, "index", index, "error", err)
		return nil, err
	}
	return answer, nil
}

// Runs lists every session, most recent first.
func (s *Service) Runs() ([]domain.Session, error) {
	return s.store.Sessions()
}

// Run returns one session by id.
func (s *Service) Run(id string) (*domain.Session, error) {
	return s.store.SessionByID(id)
}

// ReviewAnswers returns the answers to show when reviewing a run, in
// question order. The store keeps every save, including repeats for one
// index after the user navigated back; review shows only the newest save
// per index.
func (s *Service) ReviewAnswers(sessionID string) ([]domain.Answer, error) {
	answers, err := s.store.AnswersBySession(sessionID)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by index, then save time: the last row of each
	// index run is the newest.
	var collapsed []domain.Answer
	for _, a := range answers {
		if n := len(collapsed); n > 0 && collapsed[n-1].QuestionIndex == a.QuestionIndex {
			collapsed[n-1] = a
			continue
		}
		collapsed = append(collapsed, a)
	}
	return collapsed, nil
}

// AnswerImage reads back one stored handwriting image by answer id.
func (s *Service) AnswerImage(answerID string) ([]byte, error) {
	answer, err := s.store.AnswerByID(answerID)
	if err != nil {
		return nil, err
	}
	return answer.CanvasData, nil
}

// DeleteRun removes a session and its answers atomically.
func (s *Service) DeleteRun(id string) error {
	if err := s.store.DeleteSession(id); err != nil {
		return err
	}
	slog.Info("run deleted", "session", id)
	return nil
}

// ToggleMark flips the question's presence in a collection and reports
// the new state.
func (s *Service) ToggleMark(kind mark.Kind, q domain.Question) (bool, error) {
	return s.store.ToggleMark(kind, q)
}

// IsMarked reports the question's presence in a collection.
func (s *Service) IsMarked(kind mark.Kind, q domain.Question) (bool, error) {
	return s.store.IsMarked(kind, q)
}

// MarkedItems lists a collection, most recently marked first.
func (s *Service) MarkedItems(kind mark.Kind) ([]domain.MarkedItem, error) {
	return s.store.MarkedItems(kind)
}

// ToggleStar flips the question's starred state and reports the new one.
func (s *Service) ToggleStar(q domain.Question) (bool, error) {
	return s.ToggleMark(mark.Starred, q)
}

// ToggleQuestionable flips the question's questionable state.
func (s *Service) ToggleQuestionable(q domain.Question) (bool, error) {
	return s.ToggleMark(mark.Questionable, q)
}

// IsStarred reports the question's starred state.
func (s *Service) IsStarred(q domain.Question) (bool, error) {
	return s.IsMarked(mark.Starred, q)
}

// IsQuestionable reports the question's questionable state.
func (s *Service) IsQuestionable(q domain.Question) (bool, error) {
	return s.IsMarked(mark.Questionable, q)
}

// StarredItems lists the starred collection, most recent first.
func (s *Service) StarredItems() ([]domain.MarkedItem, error) {
	return s.MarkedItems(mark.Starred)
}

// QuestionableItems lists the questionable collection, most recent first.
func (s *Service) QuestionableItems() ([]domain.MarkedItem, error) {
	return s.MarkedItems(mark.Questionable)
}
