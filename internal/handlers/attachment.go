package handlers

import (
	"encoding/json"
	"net/http"

	"chatcord-backend/internal/fileHandlers"
)

// UploadAttachment stores the file and hands back the {url, type, name}
// reference the client then sends in the message body.
func UploadAttachment(w http.ResponseWriter, r *http.Request) {
	attachment, err := fileHandlers.HandleAttachmentUpload(r)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = json.NewEncoder(w).Encode(attachment)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
