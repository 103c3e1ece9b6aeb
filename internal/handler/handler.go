package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mccnet/internal/builder"
	"mccnet/internal/device"
	"mccnet/internal/domain"
	"mccnet/internal/mutation"
	"mccnet/internal/service"
)

// maxBodyBytes caps request bodies, including uploaded scenarios
const maxBodyBytes = 8 << 20

var validate = validator.New()

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc    *service.GraphService
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService, logger *zap.Logger) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphHandler{svc: svc, logger: logger}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// CreateNodeRequest carries the device kind picked in the palette (image),
// the optional canvas-assigned id, and the node form. Type, when present,
// names the role directly and must be a known role.
type CreateNodeRequest struct {
	Type domain.Role `json:"type,omitempty"`
	ID   string      `json:"id,omitempty"`
	mutation.NodeFields
}

// Role resolves the role of the node to create. An explicit type wins;
// otherwise the device kind is classified, with unknown kinds becoming
// switches.
func (req *CreateNodeRequest) Role() (domain.Role, error) {
	if req.Type != "" {
		role, err := domain.ParseRole(string(req.Type))
		if err != nil {
			return "", &domain.FieldError{Field: "type", Value: string(req.Type), Err: err}
		}
		return role, nil
	}
	if strings.TrimSpace(req.Image) == "" {
		return "", fmt.Errorf("%w: type or image is required", domain.ErrInvalidRequest)
	}
	return device.Classify(req.Image), nil
}

// CreateEdgeRequest carries the endpoints drawn on the canvas and the edge form
type CreateEdgeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,nefield=From"`
	mutation.EdgeFields
}

// GenerateRequest asks for count nodes linked to the node in the path.
// A count of zero stores an empty batch.
type GenerateRequest struct {
	Count int                  `json:"count" validate:"gte=0"`
	Edge  builder.EdgeTemplate `json:"edge"`
	Node  builder.NodeTemplate `json:"node"`
}

// GetGraph returns the complete graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.svc.GetGraph(r.Context())
	if err != nil {
		h.fail(w, "Failed to get graph", err)
		return
	}

	h.writeJSON(w, graph, http.StatusOK)
}

// GetNode returns a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// GetNodeFields returns the edit form for a node
func (h *GraphHandler) GetNodeFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.NodeFields(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}

	h.writeJSON(w, fields, http.StatusOK)
}

// CreateNode creates a new node from the submitted form
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	role, err := req.Role()
	if err != nil {
		h.fail(w, "Invalid node type", err)
		return
	}

	node, err := h.svc.CreateNode(r.Context(), role, domain.Node{ID: req.ID}, req.NodeFields)
	if err != nil {
		h.fail(w, "Failed to create node", err)
		return
	}

	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode applies the submitted form to an existing node
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var fields mutation.NodeFields
	if !h.decode(w, r, &fields) {
		return
	}

	node, err := h.svc.EditNode(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode deletes a node and its edges
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete node", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateNodes bulk-generates nodes around the node in the path
func (h *GraphHandler) GenerateNodes(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.GenerateNodes(r.Context(), r.PathValue("id"), req.Count, req.Edge, req.Node)
	if err != nil {
		h.fail(w, "Failed to generate nodes", err)
		return
	}

	h.writeJSON(w, result, http.StatusCreated)
}

// GetEdge returns a single edge
func (h *GraphHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := h.svc.GetEdge(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get edge", err)
		return
	}

	h.writeJSON(w, edge, http.StatusOK)
}

// GetEdgeFields returns the edit form for an edge
func (h *GraphHandler) GetEdgeFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.EdgeFields(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get edge", err)
		return
	}

	h.writeJSON(w, fields, http.StatusOK)
}

// CreateEdge creates a new edge from the submitted form
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	edge, err := h.svc.CreateEdge(r.Context(), domain.Edge{From: req.From, To: req.To}, req.EdgeFields)
	if err != nil {
		h.fail(w, "Failed to create edge", err)
		return
	}

	h.writeJSON(w, edge, http.StatusCreated)
}

// UpdateEdge applies the submitted form to an existing edge
func (h *GraphHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var fields mutation.EdgeFields
	if !h.decode(w, r, &fields) {
		return
	}

	edge, err := h.svc.EditEdge(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		h.fail(w, "Failed to update edge", err)
		return
	}

	h.writeJSON(w, edge, http.StatusOK)
}

// DeleteEdge deletes an edge
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete edge", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearGraph removes every node and edge
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearGraph(r.Context()); err != nil {
		h.fail(w, "Failed to clear graph", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportScenario replaces the graph with the scenario string in the body
func (h *GraphHandler) ImportScenario(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportScenario(r.Context(), strings.TrimSpace(string(data)))
	if err != nil {
		h.fail(w, "Failed to import scenario", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ExportScenario returns the graph as a scenario string
func (h *GraphHandler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	scenario, err := h.svc.ExportScenario(r.Context())
	if err != nil {
		h.fail(w, "Failed to export scenario", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=scenario.txt")
	if _, err := io.WriteString(w, scenario); err != nil {
		h.logger.Warn("failed to write scenario", zap.Error(err))
	}
}

// ImportYAML imports a topology from YAML
func (h *GraphHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	strategy := r.URL.Query().Get("strategy")

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportYAML(r.Context(), data, strategy)
	if err != nil {
		h.fail(w, "Failed to import YAML", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ImportAnsibleInventory imports hosts from an Ansible inventory
func (h *GraphHandler) ImportAnsibleInventory(w http.ResponseWriter, r *http.Request) {
	strategy := r.URL.Query().Get("strategy")

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportAnsibleInventory(r.Context(), data, strategy)
	if err != nil {
		h.fail(w, "Failed to import Ansible inventory", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ExportJSON exports the graph as JSON
func (h *GraphHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportJSON(r.Context())
	if err != nil {
		h.fail(w, "Failed to export JSON", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=graph.json")
	w.Write(data)
}

// ExportYAML exports the graph as YAML
func (h *GraphHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=graph.yml")

	if err := h.svc.ExportYAML(r.Context(), w); err != nil {
		// Can't write error response as we already set headers
		h.logger.Error("failed to export YAML", zap.Error(err))
	}
}

// ExportAnsibleInventory exports the graph as Ansible inventory
func (h *GraphHandler) ExportAnsibleInventory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=inventory.yml")

	if err := h.svc.ExportAnsibleInventory(r.Context(), w); err != nil {
		h.logger.Error("failed to export Ansible inventory", zap.Error(err))
	}
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			h.writeJSON(w, ErrorResponse{
				Error:   "Invalid request body",
				Details: fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag()),
				Field:   fe.Field(),
			}, http.StatusBadRequest)
			return false
		}
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

// fail maps a service error to a status code and writes it
func (h *GraphHandler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err))
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		resp.Field = fieldErr.Field
	}
	h.writeJSON(w, resp, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateNode), errors.Is(err, domain.ErrDuplicateEdge):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidNumericField),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrDanglingEdgeReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrMalformedScenario):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
