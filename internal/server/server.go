// Package server exposes the analysis pipeline over HTTP: an export is
// uploaded together with optional prior-period data and analysis options,
// and the report comes back as JSON, CSV or text.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/config"
	"github.com/iwvelando/roomrev/internal/metrics"
	"github.com/iwvelando/roomrev/internal/schema"
	"github.com/iwvelando/roomrev/internal/sheet"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/adapters"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/output"
	"github.com/iwvelando/roomrev/pkg/validation"
)

// Form fields of an analysis request.
const (
	fieldFile   = "file"
	fieldPrior  = "prior"
	fieldConfig = "config"
	fieldFormat = "format"
)

type handler struct {
	logger        *zap.Logger
	aliases       *synonym.Table
	pipeline      *metrics.Pipeline
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler serving the analysis API. A nil
// alias table uses the built-in aliases. Run metrics are served at /metrics
// when pipeline is not nil.
func NewHandler(logger *zap.Logger, aliases *synonym.Table, pipeline *metrics.Pipeline, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aliases == nil {
		aliases = synonym.Default()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		aliases:       aliases,
		pipeline:      pipeline,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/analyze", h.handleAnalyze)
	r.Get("/api/version", h.handleVersion)
	r.Get("/healthz", h.handleHealth)
	if pipeline != nil {
		r.Handle("/metrics", promhttp.HandlerFor(pipeline.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

type analyzeResponse struct {
	Report analysis.Report `json:"report"`
	// Warnings are configuration warnings; analysis warnings are part of
	// the report.
	Warnings   []string `json:"warnings,omitempty"`
	CSV        string   `json:"csv"`
	Duration   string   `json:"duration"`
	ConfigYAML string   `json:"configYaml"`
}

// requestError is a failure attributable to the request.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	format := r.FormValue(fieldFormat)
	if format == "" {
		format = constants.OutputFormatJSON
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	conf, err := requestConfiguration(r)
	if err != nil {
		h.respondFailure(w, r, err, op)
		return
	}
	report, err := h.runAnalysis(r.Context(), r.MultipartForm, conf)
	if err != nil {
		h.respondFailure(w, r, err, op)
		return
	}
	elapsed := time.Since(start)

	h.logger.Info("analysis served",
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("run_id", report.RunID),
		zap.String("source", report.Source),
		zap.String("format", format),
		zap.Duration("duration", elapsed),
	)

	if format != constants.OutputFormatJSON {
		contentType := "text/plain; charset=utf-8"
		if format == constants.OutputFormatCSV {
			contentType = "text/csv; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		if err := output.Write(w, format, report); err != nil {
			h.logger.Error("failed to write report", zap.String("op", op), zap.Error(err))
		}
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, report); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}
	configYAML, err := yaml.Marshal(conf)
	if err != nil {
		h.logger.Warn("failed to marshal effective configuration", zap.String("op", op), zap.Error(err))
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Report:     report,
		Warnings:   conf.ValidateConfiguration(),
		CSV:        csvBuf.String(),
		Duration:   elapsed.String(),
		ConfigYAML: string(configYAML),
	})
}

// requestConfiguration builds the run configuration from the optional
// config part, a YAML document shaped like the configuration file. File
// locations in it are ignored: inputs come from the upload and aliases from
// the server.
func requestConfiguration(r *http.Request) (*config.Configuration, error) {
	var source io.Reader = strings.NewReader(r.FormValue(fieldConfig))
	if file, _, err := r.FormFile(fieldConfig); err == nil {
		defer file.Close()
		source = file
	}

	conf, err := config.LoadConfigurationFromReader(source)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	conf.Input.File = ""
	conf.Analysis.PriorFile = ""
	conf.Synonyms.File = ""
	conf.Metrics.Textfile = ""
	conf.Logging = config.LoggingConfig{}
	return conf, nil
}

func (h *handler) runAnalysis(ctx context.Context, form *multipart.Form, conf *config.Configuration) (analysis.Report, error) {
	currentHeader := firstFile(form, fieldFile)
	if currentHeader == nil {
		return analysis.Report{}, badRequest("missing export file")
	}
	conf.Input.File = filepath.Base(currentHeader.Filename)
	priorHeader := firstFile(form, fieldPrior)
	if priorHeader != nil {
		conf.Analysis.PriorFile = filepath.Base(priorHeader.Filename)
	}

	if err := conf.Validate(); err != nil {
		return analysis.Report{}, badRequest("%v", err)
	}
	opts, err := adapters.AnalysisOptions(conf)
	if err != nil {
		return analysis.Report{}, badRequest("%v", err)
	}
	currentOpts, priorOpts := adapters.SheetOptions(conf, opts)

	current, err := h.readUpload(currentHeader, currentOpts)
	if err != nil {
		return analysis.Report{}, err
	}
	var prior *analysis.Input
	if priorHeader != nil {
		in, err := h.readUpload(priorHeader, priorOpts)
		if err != nil {
			return analysis.Report{}, err
		}
		prior = &in
	}

	report, err := analysis.NewRunner(h.aliases, h.logger, h.pipeline).Run(ctx, current, prior, opts)
	if err != nil {
		var schemaErr *schema.SchemaResolutionError
		if errors.As(err, &schemaErr) {
			return report, &requestError{status: http.StatusUnprocessableEntity, msg: err.Error()}
		}
		return report, err
	}
	return report, nil
}

func (h *handler) readUpload(fh *multipart.FileHeader, opts sheet.Options) (analysis.Input, error) {
	file, err := fh.Open()
	if err != nil {
		return analysis.Input{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer file.Close()

	table, err := sheet.Read(h.logger, filepath.Base(fh.Filename), file, h.aliases, opts)
	if err != nil {
		return analysis.Input{}, &requestError{status: http.StatusUnprocessableEntity, msg: err.Error()}
	}
	return adapters.TableToInput(table), nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) respondFailure(w http.ResponseWriter, r *http.Request, err error, op string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.respondErrorWithOp(w, r, reqErr.status, reqErr.msg, op)
		return
	}
	h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("analysis request failed",
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
