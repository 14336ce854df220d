package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/service"

	"go.uber.org/zap"
)

// KnowledgeHandler exposes a KnowledgeService over HTTP
type KnowledgeHandler struct {
	svc    *service.KnowledgeService
	logger *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(svc *service.KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeHandler{svc: svc, logger: logger}
}

// Register adds the API routes to mux
func (h *KnowledgeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/knowledge", h.GetKnowledge)
	mux.HandleFunc("POST /api/knowledge/reload", h.Reload)
	mux.HandleFunc("GET /api/canon", h.GetCanon)
	mux.HandleFunc("GET /api/canon/{name}", h.GetStoredCanon)
	mux.HandleFunc("POST /api/project", h.Project)
	mux.HandleFunc("POST /api/processes/{name}/run", h.RunProcess)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// KnowledgeResponse summarises the loaded knowledge file
type KnowledgeResponse struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Graphs    int               `json:"graphs"`
	Processes []ProcessResponse `json:"processes"`
}

// ProcessResponse describes one process signature
type ProcessResponse struct {
	Name    string   `json:"name"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Rules   int      `json:"rules"`
}

// CanonResponse lists canon graphs as CGIF
type CanonResponse struct {
	KB     string   `json:"kb"`
	Graphs []string `json:"graphs"`
}

// ProjectRequest carries two CGIF graphs
type ProjectRequest struct {
	Target string `json:"target"`
	Filter string `json:"filter"`
}

// ProjectResponse is a projection and the variables it bound. Projection is
// empty when none exists.
type ProjectResponse struct {
	Projection string            `json:"projection,omitempty"`
	Bindings   map[string]string `json:"bindings,omitempty"`
}

// RunRequest carries process arguments
type RunRequest struct {
	Args []string `json:"args"`
}

// ExportResponse is one exported graph
type ExportResponse struct {
	Rule    string `json:"rule"`
	Retract bool   `json:"retract,omitempty"`
	Graph   string `json:"graph"`
}

// RunResponse reports a finished process run
type RunResponse struct {
	Process string            `json:"process"`
	Cycles  int               `json:"cycles"`
	Firings int               `json:"firings"`
	Exports []ExportResponse  `json:"exports"`
	Outputs map[string]string `json:"outputs,omitempty"`
}

// GetKnowledge returns the loaded knowledge summary
func (h *KnowledgeHandler) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	k := h.svc.Knowledge()
	if k == nil {
		h.writeError(w, "Not found", "no knowledge loaded", http.StatusNotFound)
		return
	}
	resp := KnowledgeResponse{Name: k.Name, Path: h.svc.Path(), Graphs: k.KB.Len()}
	for _, p := range k.Processes {
		resp.Processes = append(resp.Processes, ProcessResponse{
			Name:    p.Name,
			Inputs:  p.Inputs(),
			Outputs: p.Outputs(),
			Rules:   len(p.Rules),
		})
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// Reload re-reads the knowledge file from disk
func (h *KnowledgeHandler) Reload(w http.ResponseWriter, r *http.Request) {
	path := h.svc.Path()
	if path == "" {
		h.writeError(w, "Not found", "no knowledge loaded", http.StatusNotFound)
		return
	}
	if _, err := h.svc.Load(r.Context(), path); err != nil {
		h.writeServiceError(w, "Failed to reload knowledge", err)
		return
	}
	h.GetKnowledge(w, r)
}

// GetCanon returns the in-memory canon
func (h *KnowledgeHandler) GetCanon(w http.ResponseWriter, r *http.Request) {
	graphs, err := h.svc.Canon()
	if err != nil {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, CanonResponse{KB: h.svc.Knowledge().Name, Graphs: formatAll(graphs)}, http.StatusOK)
}

// GetStoredCanon returns a canon from the canon database
func (h *KnowledgeHandler) GetStoredCanon(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	graphs, err := h.svc.StoredCanon(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, "Failed to load canon", err)
		return
	}
	h.writeJSON(w, CanonResponse{KB: name, Graphs: formatAll(graphs)}, http.StatusOK)
}

// Project projects the request filter onto its target
func (h *KnowledgeHandler) Project(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.svc.Project(req.Target, req.Filter)
	if err != nil {
		h.writeServiceError(w, "Failed to project", err)
		return
	}
	resp := ProjectResponse{}
	if report.Projection != nil {
		resp.Projection = codec.FormatCGIF(report.Projection)
		resp.Bindings = make(map[string]string, len(report.Bindings))
		for _, cv := range report.Bindings {
			resp.Bindings[cv.Name] = cv.Binding.String()
		}
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// RunProcess runs the named process to quiescence
func (h *KnowledgeHandler) RunProcess(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
	}

	report, err := h.svc.Run(r.Context(), r.PathValue("name"), req.Args)
	if err != nil {
		h.writeServiceError(w, "Failed to run process", err)
		return
	}

	resp := RunResponse{
		Process: report.Process,
		Cycles:  report.Cycles,
		Firings: report.Firings,
		Exports: make([]ExportResponse, 0, len(report.Exports)),
	}
	for _, ex := range report.Exports {
		resp.Exports = append(resp.Exports, ExportResponse{Rule: ex.Rule, Retract: ex.Retract, Graph: codec.FormatCGIF(ex.Graph)})
	}
	if len(report.Outputs) > 0 {
		resp.Outputs = make(map[string]string, len(report.Outputs))
		for name, v := range report.Outputs {
			resp.Outputs[name] = v.String()
		}
	}
	h.writeJSON(w, resp, http.StatusOK)
}

func formatAll(graphs []*domain.Graph) []string {
	out := make([]string, len(graphs))
	for i, g := range graphs {
		out[i] = codec.FormatCGIF(g)
	}
	return out
}

// writeServiceError maps runtime error kinds onto status codes
func (h *KnowledgeHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrStructural),
		errors.Is(err, domain.ErrType),
		errors.Is(err, domain.ErrIllegalOperation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrIO):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *KnowledgeHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *KnowledgeHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
