package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/cors"

	"github.com/luxdoc/doc2quiz"
	"github.com/luxdoc/doc2quiz/internal/fileutil"
	"github.com/luxdoc/doc2quiz/internal/httputil"
	"github.com/luxdoc/doc2quiz/internal/jobs"
)

// User-facing messages.
const (
	MsgUploaded      = "Fayl yuklandi va konvertatsiya boshlandi"
	MsgUnsupported   = "Faqat .doc va .docx fayllar qo'llab-quvvatlanadi"
	MsgJobNotFound   = "Topshiriq topilmadi"
	MsgNotReady      = "Fayl hali tayyor emas"
	MsgResultMissing = "Natija fayli topilmadi"
	MsgFileRequired  = "Fayl tanlanmagan"
	MsgBadFormat     = "Format gift yoki hemis bo'lishi kerak"
	MsgTooLarge      = "Fayl hajmi juda katta"
)

// DefaultMaxUploadBytes limits upload request bodies.
const DefaultMaxUploadBytes = 20 << 20

// Config configures a Server.
type Config struct {
	UploadDir      string
	MaxUploadBytes int64    // DefaultMaxUploadBytes when zero
	CORSOrigins    []string // "*" when empty
	DefaultFormat  doc2quiz.Format
}

// Server handles the job HTTP API.
type Server struct {
	store  jobs.Store
	runner *jobs.Runner
	cfg    Config
	logger *slog.Logger
}

// New creates a Server.
func New(store jobs.Store, runner *jobs.Runner, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = doc2quiz.FormatGIFT
	}
	return &Server{store: store, runner: runner, cfg: cfg, logger: logger}
}

// Handler returns the routed handler wrapped in CORS, recovery and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /stats", s.stats)
	mux.HandleFunc("POST /upload", s.upload)
	mux.HandleFunc("GET /status/{id}", s.status)
	mux.HandleFunc("GET /download/{id}", s.download)

	var h http.Handler = mux
	h = Recovery(s.logger)(h)
	h = RequestLog(s.logger)(h)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	return c.Handler(h)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// stats reports zero rather than failing when the store is unreachable.
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.CountByStatus(r.Context(), jobs.StatusCompleted)
	if err != nil {
		s.logger.Error("counting jobs failed", "error", err)
		n = 0
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"count": n})
}

// uploadRequest is the validated part of an upload form.
type uploadRequest struct {
	Filename string
	Format   string
}

func (u *uploadRequest) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Filename,
			validation.Required.Error(MsgFileRequired),
			validation.By(documentName),
		),
		validation.Field(&u.Format,
			validation.Required.Error(MsgBadFormat),
			validation.In(string(doc2quiz.FormatGIFT), string(doc2quiz.FormatHemis)).Error(MsgBadFormat),
		),
	)
}

func documentName(value any) error {
	name, _ := value.(string)
	if !fileutil.IsDocument(name) {
		return errors.New(MsgUnsupported)
	}
	return nil
}

type uploadResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, MsgTooLarge)
		default:
			httputil.RespondError(w, http.StatusBadRequest, MsgFileRequired)
		}
		return
	}
	defer file.Close()

	req := uploadRequest{
		Filename: filepath.Base(strings.ReplaceAll(header.Filename, `\`, "/")),
		Format:   strings.ToLower(strings.TrimSpace(r.FormValue("format"))),
	}
	if req.Format == "" {
		req.Format = string(s.cfg.DefaultFormat)
	}
	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	job := jobs.NewJob(req.Filename, req.Format)
	inputPath := filepath.Join(s.cfg.UploadDir, job.ID+strings.ToLower(filepath.Ext(req.Filename)))
	if err := saveUpload(file, inputPath); err != nil {
		s.logger.Error("saving upload failed", "job", job.ID, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "upload could not be stored")
		return
	}

	if err := s.runner.Submit(r.Context(), job, inputPath); err != nil {
		s.logger.Error("creating job failed", "job", job.ID, "error", err)
		_ = os.Remove(inputPath)
		httputil.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, uploadResponse{JobID: job.ID, Message: MsgUploaded})
}

// respondValidation reports the first field message as detail and every
// field under "errors".
func respondValidation(w http.ResponseWriter, err error) {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail := ""
	for _, field := range []string{"Filename", "Format"} {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			detail = fe.Error()
			break
		}
	}
	httputil.RespondErrorWithExtras(w, http.StatusBadRequest, detail, map[string]any{"errors": fieldErrs})
}

func saveUpload(src io.Reader, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	dst, err := os.Create(path) // #nosec G304 -- name derived from a generated job ID
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	_, err = io.Copy(dst, src)
	return err
}

// lookup returns the job named by the {id} path value, writing the 404
// itself when there is none.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	id := r.PathValue("id")
	if !jobs.ValidID(id) {
		httputil.RespondError(w, http.StatusNotFound, MsgJobNotFound)
		return nil, false
	}

	job, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			httputil.RespondError(w, http.StatusNotFound, MsgJobNotFound)
		} else {
			s.logger.Error("fetching job failed", "job", id, "error", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return job, true
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, job)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if job.Status != jobs.StatusCompleted {
		httputil.RespondError(w, http.StatusBadRequest, MsgNotReady)
		return
	}

	f, err := os.Open(s.runner.OutputPath(job.ID))
	if err != nil {
		s.logger.Error("result file missing", "job", job.ID, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, MsgResultMissing)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, MsgResultMissing)
		return
	}

	name := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename)) + ".txt"
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// Addr formats a listen address, accepting a bare port.
func Addr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return fmt.Sprintf(":%s", addr)
	}
	return addr
}
