package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/weitinglin/tingxie/internal/domain"
)

// History is the slice of the practice service the exporter reads.
type History interface {
	Runs() ([]domain.Session, error)
	ReviewAnswers(sessionID string) ([]domain.Answer, error)
}

const (
	sessionsSheet = "Sessions"
	answersSheet  = "Answers"
)

// SessionsXLSX writes the whole practice history as a workbook: one sheet
// of sessions, one of answer metadata (the handwriting images themselves
// stay in the database). Timestamps are written as time values so the
// spreadsheet can sort and format them.
func SessionsXLSX(history History, w io.Writer) error {
	sessions, err := history.Runs()
	if err != nil {
		return fmt.Errorf("failed to read sessions for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sessionsSheet)
	f.NewSheet(answersSheet)

	sessionHeader := []any{"Session", "Started", "Lessons", "Test type", "Questions"}
	if err := f.SetSheetRow(sessionsSheet, "A1", &sessionHeader); err != nil {
		return fmt.Errorf("failed to write session header: %w", err)
	}
	answerHeader := []any{"Session", "Index", "Type", "Character", "Zhuyin", "Context word", "Saved"}
	if err := f.SetSheetRow(answersSheet, "A1", &answerHeader); err != nil {
		return fmt.Errorf("failed to write answer header: %w", err)
	}

	answerRow := 2
	for i, session := range sessions {
		row := []any{
			session.ID,
			session.Timestamp,
			strings.Join(session.LessonIDs, ", "),
			string(session.TestType),
			session.TotalQuestions,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sessionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write session row %s: %w", session.ID, err)
		}

		answers, err := history.ReviewAnswers(session.ID)
		if err != nil {
			return fmt.Errorf("failed to read answers for session %s: %w", session.ID, err)
		}
		for _, a := range answers {
			row := []any{
				a.SessionID,
				a.QuestionIndex,
				string(a.QuestionType),
				a.TargetChar,
				a.TargetZhuyin,
				a.ContextWord,
				a.Timestamp,
			}
			cell := fmt.Sprintf("A%d", answerRow)
			if err := f.SetSheetRow(answersSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write answer row %s: %w", a.ID, err)
			}
			answerRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
