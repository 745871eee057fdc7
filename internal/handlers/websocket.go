package handlers

import (
	"net/http"
)

func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	liveHub.HandleClient(w, r, userID)
}
