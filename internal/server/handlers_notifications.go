package server

import (
	"net/http"

	"github.com/hirematch/hirematch-api/internal/store"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	notifications, err := s.store.ListNotifications(r.Context(), userID)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, notifications)
}

// handleMarkNotificationRead marks one of the caller's notifications as
// read; a notification owned by someone else reads as absent.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	_, userID, err := s.callerID(r)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	found, err := s.store.MarkNotificationRead(r.Context(), userID, id)
	if err != nil {
		s.errorStatus(w, err)
		return
	}
	if !found {
		s.errorStatus(w, &store.ErrNotFound{Kind: "notification", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"read": true})
}
