package api

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"sort"

	"github.com/phrazzld/paramstore/internal/api/shared"
	"github.com/phrazzld/paramstore/internal/codec"
	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/phrazzld/paramstore/internal/service"
)

// ParameterHandler serves the parameter endpoints.
type ParameterHandler struct {
	svc    *service.ParameterService
	logger *slog.Logger
}

// NewParameterHandler creates a ParameterHandler.
func NewParameterHandler(svc *service.ParameterService, log *slog.Logger) *ParameterHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ParameterHandler{
		svc:    svc,
		logger: log.With(slog.String("component", "parameter_handler")),
	}
}

func (h *ParameterHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}

// ListParameters handles GET /api/parameters. The body is the dump projection.
func (h *ParameterHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Dump(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list parameters")
		return
	}
	if records == nil {
		records = []service.Record{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// GetParameter handles GET /api/parameters/{slug}.
func (h *ParameterHandler) GetParameter(w http.ResponseWriter, r *http.Request) {
	slug, err := pathSlug(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	p, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get parameter")
		return
	}
	rec, err := h.svc.ToRecord(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get parameter")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// SetValue handles PUT /api/parameters/{slug}/value. The JSON value is
// converted to the parameter's declared type and written through the
// validators.
func (h *ParameterHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	slug, err := pathSlug(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SetValueRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Request must contain a value", err)
		return
	}

	p, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get parameter")
		return
	}
	v, err := codec.FromJSON(p.ValueType, req.Value)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.svc.Set(r.Context(), p, v); err != nil {
		HandleAPIError(w, r, err, "Failed to set parameter")
		return
	}

	rec, err := h.svc.ToRecord(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get parameter")
		return
	}
	log.Info("parameter value set over API", "slug", p.Slug)
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// History handles GET /api/parameters/{slug}/history, newest first.
func (h *ParameterHandler) History(w http.ResponseWriter, r *http.Request) {
	slug, err := pathSlug(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	p, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get parameter")
		return
	}
	history, err := h.svc.History(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list history")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newHistoryEntries(history))
}

// DeleteParameter handles DELETE /api/parameters/{slug}.
func (h *ParameterHandler) DeleteParameter(w http.ResponseWriter, r *http.Request) {
	slug, err := pathSlug(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.svc.Delete(r.Context(), slug); err != nil {
		HandleAPIError(w, r, err, "Failed to delete parameter")
		return
	}
	h.log(r).Info("parameter deleted over API", "slug", slug)
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/parameters/import. The body is a list of records
// in JSON, or YAML when the content type says so. Existing parameters are
// updated unless ?update=false.
func (h *ParameterHandler) Import(w http.ResponseWriter, r *http.Request) {
	update, err := queryBool(r, "update", true)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	format := service.FormatJSON
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch mediaType {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = service.FormatYAML
		}
	}

	records, err := service.DecodeRecords(http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes), format)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	count, err := h.svc.Load(r.Context(), records, update)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import parameters")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{Count: count})
}

// Globals handles GET /api/globals.
func (h *ParameterHandler) Globals(w http.ResponseWriter, r *http.Request) {
	globals, err := h.svc.Globals(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list global parameters")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, globals)
}

// Validators handles GET /api/validators, sorted by name.
func (h *ParameterHandler) Validators(w http.ResponseWriter, r *http.Request) {
	available := h.svc.Registry().Available()
	out := make([]ValidatorInfo, 0, len(available))
	for name, label := range available {
		out = append(out, ValidatorInfo{Name: name, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
