package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/metrics"
	"foguinho/internal/ws"
)

// WhatsAppMessage is the payload the WhatsApp bridge POSTs for every message
// it sees. Timestamp is unix milliseconds.
type WhatsAppMessage struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Body          string `json:"body"`
	Timestamp     int64  `json:"timestamp"`
	IsGroup       bool   `json:"isGroup"`
	GroupID       string `json:"groupId"`
	ParticipantID string `json:"participantId"`
}

// handleWebhookGet serves the usage document, so pointing a browser at the
// endpoint explains how to wire the bridge.
func (s *Server) handleWebhookGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "webhook_active",
		"method":   http.MethodPost,
		"endpoint": "/api/webhook",
		"usage":    "Send POST requests with WhatsApp message data",
		"example": WhatsAppMessage{
			From:          "5511999999999",
			To:            "5511888888888",
			Body:          "!fogo",
			Timestamp:     time.Now().UnixMilli(),
			IsGroup:       true,
			GroupID:       "group123",
			ParticipantID: "5511999999999",
		},
		"availableCommands": availableCommands,
	})
}

// handleWebhookPost ingests one message: commands go to the command layer,
// everything else records activity and re-evaluates the streak.
func (s *Server) handleWebhookPost(w http.ResponseWriter, r *http.Request) {
	var msg WhatsAppMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		metrics.WebhookMessages.WithLabelValues("rejected").Inc()
		s.respondError(w, http.StatusBadRequest, "payload inválido")
		return
	}

	if !msg.IsGroup || msg.GroupID == "" {
		metrics.WebhookMessages.WithLabelValues("ignored").Inc()
		s.respondJSON(w, http.StatusOK, map[string]string{
			"status": "ignored",
			"reason": "not a group message",
		})
		return
	}

	userID := msg.ParticipantID
	if userID == "" {
		userID = msg.From
	}
	now := s.messageTime(msg.Timestamp)

	if !s.limiter.Allow(userID) {
		metrics.WebhookMessages.WithLabelValues("rejected").Inc()
		log.WithField("user_id", userID).Debug("rate limited")
		s.respondError(w, http.StatusTooManyRequests, "muitas mensagens, aguarde um pouco")
		return
	}

	if kind, isCommand := ParseCommand(msg.Body); isCommand {
		metrics.WebhookMessages.WithLabelValues("command").Inc()
		metrics.Commands.WithLabelValues(kind.String()).Inc()

		resp, err := s.handleCommand(r.Context(), kind, msg.GroupID, userID, now)
		if err != nil {
			s.respondDomainError(w, err)
			return
		}
		if kind == CmdRestore && resp.Status == "" {
			metrics.Restorations.Inc()
			s.hub.Broadcast(ws.Event{Type: "restoration", Data: map[string]string{"groupId": msg.GroupID}})
		}
		s.respondJSON(w, http.StatusOK, resp)
		return
	}

	report, err := s.engine.RecordActivity(r.Context(), msg.GroupID, userID, now)
	if err != nil {
		metrics.WebhookMessages.WithLabelValues("error").Inc()
		s.respondDomainError(w, err)
		return
	}

	metrics.WebhookMessages.WithLabelValues("processed").Inc()
	s.hub.Broadcast(ws.Event{Type: "group_update", Data: report})

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "processed",
		"groupId": msg.GroupID,
		"userId":  userID,
		"streakStatus": map[string]interface{}{
			"groupId":          msg.GroupID,
			"currentStreak":    report.Group.Streak,
			"fireLevel":        report.Level.Label,
			"activeUsersToday": report.ActiveUsersToday,
			"requiredUsers":    report.RequiredUsers,
			"status":           report.Group.Status,
		},
	})
}

// messageTime converts the bridge's millisecond timestamp, falling back to
// the server clock when the bridge omits it.
func (s *Server) messageTime(millis int64) time.Time {
	if millis <= 0 {
		return time.Now().In(s.loc)
	}
	return time.UnixMilli(millis).In(s.loc)
}

// respondDomainError maps the engine's expected errors onto HTTP statuses.
// Anything else is a real fault.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnknownGroup):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrRestorationLimitExceeded):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("erro interno no webhook")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
	}
}
