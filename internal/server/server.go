// Package server exposes the import pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pennywise-app/pennywise/internal/importer"
	"github.com/pennywise-app/pennywise/internal/statement"
	"github.com/pennywise-app/pennywise/internal/store"
)

// maxUploadBytes caps a multipart import request.
const maxUploadBytes = 32 << 20

// Server routes HTTP requests to the import pipeline.
type Server struct {
	store    *store.Store
	importer *importer.Importer
	router   chi.Router
}

// New builds a server over the given store.
func New(s *store.Store) (*Server, error) {
	im, err := importer.New(s)
	if err != nil {
		return nil, err
	}

	srv := &Server{store: s, importer: im}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/import", srv.handleImport)
		r.Get("/transactions", srv.handleListTransactions)
		r.Get("/tags", srv.handleListTags)
		r.Get("/balances/{accountID}", srv.handleGetBalance)
	})
	srv.router = r

	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

type importResponse struct {
	RunID      string            `json:"run_id"`
	Parsed     int               `json:"parsed"`
	Inserted   int               `json:"inserted"`
	Duplicates int               `json:"duplicates"`
	Tagged     int               `json:"tagged"`
	Warning    string            `json:"warning,omitempty"`
	Balances   []balanceResponse `json:"balances,omitempty"`
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
	AsOf      string `json:"as_of"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}

	var files []importer.File
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read uploaded file")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read uploaded file")
				return
			}
			files = append(files, importer.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	res, err := s.importer.Import(r.Context(), files)
	if err != nil {
		writeImportError(w, err)
		return
	}

	resp := importResponse{
		RunID:      res.RunID,
		Parsed:     res.Parsed,
		Inserted:   len(res.Inserted),
		Duplicates: res.Duplicates,
	}
	if res.Tagging != nil {
		resp.Tagged = res.Tagging.Affected
	}
	if res.TaggingErr != nil {
		resp.Warning = "imported but tagging failed"
		log.Printf("import %s: %v", res.RunID, res.TaggingErr)
	}
	for _, b := range res.Balances {
		resp.Balances = append(resp.Balances, balanceResponse{
			AccountID: b.AccountID,
			Balance:   b.Balance.StringFixed(2),
			AsOf:      b.AsOf.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeImportError maps pipeline failures onto HTTP status codes: an
// unsupported upload type is the client's fault (415), unparsable content
// is unprocessable (422), and a persistence fault is ours (500).
func writeImportError(w http.ResponseWriter, err error) {
	var (
		ctErr      *importer.ContentTypeError
		formatErr  *statement.FormatError
		fieldErr   *statement.FieldParseError
		storageErr *store.StorageError
	)
	switch {
	case errors.As(err, &ctErr):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &formatErr), errors.As(err, &fieldErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &storageErr):
		log.Printf("import failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		log.Printf("import failed: %v", err)
		writeError(w, http.StatusInternalServerError, "import failed")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context())
	if err != nil {
		log.Printf("list transactions: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	type row struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		TagID       *int64 `json:"tag_id,omitempty"`
	}
	out := make([]row, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, row{
			ID:          t.ID,
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount.StringFixed(2),
			TagID:       t.TagID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		log.Printf("list tags: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	type row struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	out := make([]row, 0, len(tags))
	for _, t := range tags {
		out = append(out, row{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	snap, err := s.store.GetBalance(r.Context(), accountID)
	if err != nil {
		log.Printf("get balance: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no balance for account")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		AccountID: snap.AccountID,
		Balance:   snap.Balance.StringFixed(2),
		AsOf:      snap.AsOf.Format("2006-01-02"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
