package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/metrics"
	"foguinho/internal/ws"
)

// handleListGroups serves the dashboard home data: every group plus the
// aggregate stats.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.loc)
	summaries, stats, err := s.groups.Overview(r.Context(), now)
	if err != nil {
		log.WithError(err).Error("erro na listagem de grupos")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
		return
	}

	metrics.Groups.Set(float64(stats.TotalGroups))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"groups":    summaries,
		"stats":     stats,
		"timestamp": now,
	})
}

// createGroupRequest provisions one group. RequiredUsers and MaxRestorations
// fall back to the configured defaults when omitted.
type createGroupRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	RequiredUsers   int    `json:"requiredUsers"`
	MaxRestorations int    `json:"maxRestorations"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "payload inválido")
		return
	}

	g, err := s.groups.Provision(r.Context(), req.ID, req.Name, req.RequiredUsers, req.MaxRestorations)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.WithError(err).Error("erro ao provisionar grupo")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
		return
	}
	s.respondJSON(w, http.StatusCreated, g)
}

// handleGroupStatus serves the per-group detail page.
func (s *Server) handleGroupStatus(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	detail, err := s.groups.Detail(r.Context(), groupID, time.Now().In(s.loc))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, detail)
}

type restoreRequest struct {
	UserID string `json:"userId"`
}

// handleRestoreGroup is the dashboard's restore button.
func (s *Server) handleRestoreGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "payload inválido")
		return
	}

	now := time.Now().In(s.loc)
	result, err := s.engine.Restore(r.Context(), groupID, req.UserID, now)
	if err != nil {
		if errors.Is(err, common.ErrRestorationLimitExceeded) {
			used, countErr := s.engine.RestorationsUsed(r.Context(), groupID, now)
			if countErr != nil {
				log.WithError(countErr).Error("erro ao contar restaurações")
			}
			s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success":          false,
				"message":          "Limite de restaurações atingido para este mês",
				"restorationsUsed": used,
			})
			return
		}
		s.respondDomainError(w, err)
		return
	}

	metrics.Restorations.Inc()
	s.hub.Broadcast(ws.Event{Type: "restoration", Data: result})

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"groupId":          result.GroupID,
		"newStreak":        result.NewStreak,
		"fireLevel":        result.Level.Label,
		"restorationsUsed": result.RestorationsUsed,
		"maxRestorations":  result.MaxRestorations,
		"restoredBy":       result.RestoredBy,
		"restoredAt":       result.RestoredAt,
	})
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "foguinho",
	})
}
