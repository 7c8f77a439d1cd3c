package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weitinglin/tingxie/internal/domain"
	"github.com/weitinglin/tingxie/internal/export"
	"github.com/weitinglin/tingxie/internal/mark"
	"github.com/weitinglin/tingxie/internal/practice"
	"github.com/weitinglin/tingxie/internal/storage"
	"github.com/weitinglin/tingxie/internal/testgen"
)

// Server holds the dependencies for the HTTP API consumed by the browser
// front-end.
type Server struct {
	svc      *practice.Service
	router   *http.ServeMux
	validate *validator.Validate
}

// NewServer creates and configures a new server over the practice service.
func NewServer(svc *practice.Service) *Server {
	s := &Server{
		svc:      svc,
		router:   http.NewServeMux(),
		validate: validator.New(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/api/lessons", s.handleLessons())
	s.router.HandleFunc("/api/runs", s.handleRuns())
	s.router.HandleFunc("/api/runs/marked", s.handleMarkedRun())
	s.router.HandleFunc("/api/runs/", s.handleRun())
	s.router.HandleFunc("/api/answers/", s.handleAnswerImage())
	s.router.HandleFunc("/api/marks/", s.handleMarks())
	s.router.HandleFunc("/api/export.xlsx", s.handleExport())
	s.router.HandleFunc("/api/sync", s.handleSync())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps service errors onto status codes. Selection problems
// (empty pools, empty collections) are user-facing validation outcomes,
// not faults.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, testgen.ErrEmptySource), errors.Is(err, practice.ErrNoMarkedItems):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, storage.ErrAnswerNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// handleLessons lists the catalog for the lesson picker.
func (s *Server) handleLessons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lessons := s.svc.Lessons()
		if lessons == nil {
			lessons = []domain.LessonMeta{}
		}
		writeJSON(w, http.StatusOK, lessons)
	}
}

// questionView is a question plus its rendered prompt, so the front-end
// does not re-implement the highlight rule.
type questionView struct {
	domain.Question
	Prompt string `json:"prompt"`
}

func questionViews(questions []domain.Question) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{Question: q, Prompt: testgen.PromptHTML(q)})
	}
	return views
}

type startRunRequest struct {
	LessonIDs []string        `json:"lessonIds" validate:"required,min=1"`
	Count     int             `json:"count" validate:"required,min=1"`
	Mode      domain.TestType `json:"mode" validate:"required,oneof=char zhuyin mixed"`
}

type runResponse struct {
	Session   *domain.Session `json:"session"`
	Questions []questionView  `json:"questions"`
}

// handleRuns lists runs or starts a new one.
func (s *Server) handleRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			runs, err := s.svc.Runs()
			if err != nil {
				writeError(w, err)
				return
			}
			if runs == nil {
				runs = []domain.Session{}
			}
			writeJSON(w, http.StatusOK, runs)
		case http.MethodPost:
			var req startRunRequest
			if !s.decode(w, r, &req) {
				return
			}
			session, questions, err := s.svc.StartRun(req.LessonIDs, req.Count, req.Mode)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, runResponse{Session: session, Questions: questionViews(questions)})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type markedRunRequest struct {
	Kind mark.Kind `json:"kind" validate:"required,oneof=starred questionable"`
}

// handleMarkedRun starts a run over a marked collection.
func (s *Server) handleMarkedRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req markedRunRequest
		if !s.decode(w, r, &req) {
			return
		}
		session, questions, err := s.svc.StartMarkedRun(req.Kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, runResponse{Session: session, Questions: questionViews(questions)})
	}
}

type saveAnswerRequest struct {
	QuestionIndex int             `json:"questionIndex" validate:"min=0"`
	Question      domain.Question `json:"question" validate:"required"`
	Image         []byte          `json:"image"`
}

// handleRun serves the per-run subresources: answers and deletion.
func (s *Server) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" {
			http.Error(w, "Missing run id", http.StatusBadRequest)
			return
		}

		switch {
		case sub == "" && r.Method == http.MethodDelete:
			if err := s.svc.DeleteRun(id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case sub == "answers" && r.Method == http.MethodGet:
			answers, err := s.svc.ReviewAnswers(id)
			if err != nil {
				writeError(w, err)
				return
			}
			if answers == nil {
				answers = []domain.Answer{}
			}
			writeJSON(w, http.StatusOK, answers)
		case sub == "answers" && r.Method == http.MethodPost:
			var req saveAnswerRequest
			if !s.decode(w, r, &req) {
				return
			}
			answer, err := s.svc.RecordAnswer(id, req.QuestionIndex, req.Question, req.Image)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, answer)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleAnswerImage reads back one stored handwriting image:
// GET /api/answers/{id}/image.
func (s *Server) handleAnswerImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/answers/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" || sub != "image" {
			http.NotFound(w, r)
			return
		}
		image, err := s.svc.AnswerImage(id)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(image)
	}
}

type markRequest struct {
	Question domain.Question `json:"question" validate:"required"`
}

// handleMarks serves the starred and questionable collections:
// GET /api/marks/{kind} lists, POST /api/marks/{kind}/toggle flips,
// POST /api/marks/{kind}/check reports presence.
func (s *Server) handleMarks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/marks/")
		kindName, action, _ := strings.Cut(rest, "/")
		kind := mark.Kind(kindName)
		if !kind.Valid() {
			http.Error(w, "Unknown collection", http.StatusNotFound)
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			items, err := s.svc.MarkedItems(kind)
			if err != nil {
				writeError(w, err)
				return
			}
			if items == nil {
				items = []domain.MarkedItem{}
			}
			writeJSON(w, http.StatusOK, items)
		case action == "toggle" && r.Method == http.MethodPost:
			var req markRequest
			if !s.decode(w, r, &req) {
				return
			}
			marked, err := s.svc.ToggleMark(kind, req.Question)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"marked": marked})
		case action == "check" && r.Method == http.MethodPost:
			var req markRequest
			if !s.decode(w, r, &req) {
				return
			}
			marked, err := s.svc.IsMarked(kind, req.Question)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"marked": marked})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleExport streams the practice history as a spreadsheet.
func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="tingxie.xlsx"`)
		if err := export.SessionsXLSX(s.svc, w); err != nil {
			log.Printf("Error exporting history: %v", err)
		}
	}
}

// handleSync triggers a manual dataset refresh.
func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.svc.SyncDataset(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
