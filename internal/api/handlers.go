package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"reqtree/internal/tree"
)

// MoveFolderRequest re-parents a folder. A nil ParentID means root.
type MoveFolderRequest struct {
	ParentID  *string `json:"parentId"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

func (r MoveFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ParentID, validation.NilOrNotEmpty),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

// MoveLeafRequest re-parents a request. A nil FolderID means root.
type MoveLeafRequest struct {
	FolderID *string `json:"folderId"`
}

func (r MoveLeafRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FolderID, validation.NilOrNotEmpty),
	)
}

// ReorderRequest is the complete new order of one sibling set.
type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

func (r ReorderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderedIDs,
			validation.Required,
			validation.Each(validation.Required),
			validation.By(uniqueIDs),
		),
	)
}

func uniqueIDs(v any) error {
	ids, _ := v.([]string)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.backend.FetchTree(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetch-tree", err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleMoveFolder(w http.ResponseWriter, r *http.Request) {
	var req MoveFolderRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.backend.MoveFolder(r.Context(), id, trimmed(req.ParentID), req.SortOrder); err != nil {
		s.writeStoreError(w, "move-folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveLeaf(w http.ResponseWriter, r *http.Request) {
	var req MoveLeafRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.backend.MoveLeaf(r.Context(), id, trimmed(req.FolderID)); err != nil {
		s.writeStoreError(w, "move-leaf", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderFolders(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.backend.ReorderFolders(r.Context(), req.OrderedIDs); err != nil {
		s.writeStoreError(w, "reorder-folders", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderLeaves(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.backend.ReorderLeaves(r.Context(), req.OrderedIDs); err != nil {
		s.writeStoreError(w, "reorder-leaves", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v and validates it, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := v.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("op", op).Error("Store operation failed")
	} else {
		s.log.WithFields(logrus.Fields{"op": op, "status": status}).WithError(err).Debug("Rejected mutation")
	}
	s.metrics.MutationsRejected.WithLabelValues(op, fmt.Sprint(status)).Inc()
	s.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	var nf tree.NotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, tree.ErrOrderMismatch),
		errors.Is(err, tree.ErrKindMismatch),
		errors.Is(err, tree.ErrNotFolder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
