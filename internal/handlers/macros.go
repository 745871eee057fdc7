package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chatcord-backend/internal/store"

	"github.com/go-chi/chi/v5"
)

func requestUserID(r *http.Request) int64 {
	return r.Context().Value(UserIDKeyType{}).(int64)
}

func requestSessionID(r *http.Request) int64 {
	return r.Context().Value(SessionIDKeyType{}).(int64)
}

func queryID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func urlParamID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// cursorParam reads the optional pagination cursor; 0 means "newest page".
func cursorParam(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return 0, true
	}

	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor <= 0 {
		return 0, false
	}
	return cursor, true
}

// respondStoreError maps the store's error taxonomy onto status codes.
// Anything unexpected is logged and hidden behind a bare 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, store.ErrInvalidArgument):
		http.Error(w, "Content and file are missing", http.StatusBadRequest)
	case errors.Is(err, store.ErrPermissionDenied):
		http.Error(w, "You are not allowed to do that", http.StatusForbidden)
	default:
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func isServerOwner(userID int64, serverID int64) (bool, error) {
	var ownsServer bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM servers WHERE id = ? AND owner_id = ?)", serverID, userID).Scan(&ownsServer)
	if err != nil {
		return false, err
	}
	return ownsServer, nil
}

func addServerMember(serverID int64, userID int64, role string) error {
	_, err := db.Exec("INSERT INTO server_members (server_id, user_id, role) VALUES (?, ?, ?)", serverID, userID, role)
	return err
}
