package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weitinglin/tingxie/internal/domain"
)

// CreateSession inserts a new practice session and returns it. The id is a
// fresh random token and the timestamp is the current instant; the caller
// supplies everything else. A single-row insert, so it either fully lands
// or fully fails.
func (s *Store) CreateSession(lessonIDs []string, testType domain.TestType, totalQuestions int) (*domain.Session, error) {
	session := &domain.Session{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		LessonIDs:      lessonIDs,
		TestType:       testType,
		TotalQuestions: totalQuestions,
	}

	encodedIDs, err := json.Marshal(session.LessonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lesson ids: %w", err)
	}

	_, err = s.conn.Exec(`
		INSERT INTO sessions (id, timestamp, lesson_ids, test_type, total_questions)
		VALUES (?, ?, ?, ?, ?)
	`,
		session.ID,
		session.Timestamp,
		string(encodedIDs),
		string(session.TestType),
		session.TotalQuestions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session %s: %w", session.ID, err)
	}
	return session, nil
}

// SaveAnswer inserts a new answer record. The session id is taken as
// given: the store does not verify it names an existing session, and a
// second save for the same (session, index) pair adds a second row rather
// than replacing the first. Keeping answers append-only is the lifecycle
// layer's contract; see practice.Service.
func (s *Store) SaveAnswer(sessionID string, questionIndex int, questionType domain.QuestionType, targetChar, targetZhuyin, contextWord string, canvasData []byte) (*domain.Answer, error) {
	answer := &domain.Answer{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		QuestionIndex: questionIndex,
		QuestionType:  questionType,
		TargetChar:    targetChar,
		TargetZhuyin:  targetZhuyin,
		ContextWord:   contextWord,
		CanvasData:    canvasData,
		Timestamp:     time.Now(),
	}

	_, err := s.conn.Exec(`
		INSERT INTO answers (id, session_id, question_index, question_type, target_char, target_zhuyin, context_word, canvas_data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		answer.ID,
		answer.SessionID,
		answer.QuestionIndex,
		string(answer.QuestionType),
		answer.TargetChar,
		answer.TargetZhuyin,
		answer.ContextWord,
		answer.CanvasData,
		answer.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert answer for session %s index %d: %w", sessionID, questionIndex, err)
	}
	return answer, nil
}

// Sessions returns every session, most recent first. Ties on timestamp
// fall back to id order so repeated calls agree.
func (s *Store) Sessions() ([]domain.Session, error) {
	rows, err := s.conn.Query(`
		SELECT id, timestamp, lesson_ids, test_type, total_questions
		FROM sessions
		ORDER BY timestamp DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// SessionByID returns the session with the given id, or ErrSessionNotFound.
func (s *Store) SessionByID(id string) (*domain.Session, error) {
	row := s.conn.QueryRow(`
		SELECT id, timestamp, lesson_ids, test_type, total_questions
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return session, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var encodedIDs string
	if err := row.Scan(&session.ID, &session.Timestamp, &encodedIDs, &session.TestType, &session.TotalQuestions); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session row: %w", err)
	}
	if err := json.Unmarshal([]byte(encodedIDs), &session.LessonIDs); err != nil {
		return nil, fmt.Errorf("failed to decode lesson ids for session %s: %w", session.ID, err)
	}
	return &session, nil
}

// AnswersBySession returns every answer saved against the session, in
// question order. Duplicate saves for one index all appear, in insertion
// order within the index.
func (s *Store) AnswersBySession(sessionID string) ([]domain.Answer, error) {
	rows, err := s.conn.Query(`
		SELECT id, session_id, question_index, question_type, target_char, target_zhuyin, context_word, canvas_data, timestamp
		FROM answers WHERE session_id = ?
		ORDER BY question_index, timestamp, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.QuestionIndex,
			&a.QuestionType,
			&a.TargetChar,
			&a.TargetZhuyin,
			&a.ContextWord,
			&a.CanvasData,
			&a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan answer row for session %s: %w", sessionID, err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// AnswerByID returns one answer with its image payload, for read-back of
// a stored submission.
func (s *Store) AnswerByID(id string) (*domain.Answer, error) {
	var a domain.Answer
	err := s.conn.QueryRow(`
		SELECT id, session_id, question_index, question_type, target_char, target_zhuyin, context_word, canvas_data, timestamp
		FROM answers WHERE id = ?
	`, id).Scan(
		&a.ID,
		&a.SessionID,
		&a.QuestionIndex,
		&a.QuestionType,
		&a.TargetChar,
		&a.TargetZhuyin,
		&a.ContextWord,
		&a.CanvasData,
		&a.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find answer %s: %w", id, err)
	}
	return &a, nil
}

// DeleteSession removes the session and every answer saved against it as
// one atomic unit. It first reads the session's answers, then deletes the
// session row and each of those answer rows inside a single transaction:
// if anything fails before commit the transaction rolls back and both the
// session and its answers remain exactly as they were.
func (s *Store) DeleteSession(id string) error {
	answers, err := s.AnswersBySession(id)
	if err != nil {
		return err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete for session %s: %w", id, err)
	}

	if err := cascadeDelete(tx, id, answers); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: delete of session %s: %v", ErrTxAborted, id, err)
	}
	return nil
}

// cascadeDelete issues the session and answer deletes on tx. The caller
// owns the transaction; nothing is visible until it commits.
func cascadeDelete(tx *sql.Tx, sessionID string, answers []domain.Answer) error {
	res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	for _, a := range answers {
		if _, err := tx.Exec(`DELETE FROM answers WHERE id = ?`, a.ID); err != nil {
			return fmt.Errorf("failed to delete answer %s: %w", a.ID, err)
		}
	}
	return nil
}
