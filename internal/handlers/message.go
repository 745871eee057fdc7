package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"path"

	"chatcord-backend/internal/models"
)

// messageRequest is the creation/update body. fileUrl (plus the type/name
// the upload endpoint reported) turns into the persisted attachment
// reference {url, type, name}.
type messageRequest struct {
	Content  string `json:"content"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
}

func (req *messageRequest) attachment() *models.Attachment {
	if req.FileURL == "" {
		return nil
	}

	fileType := req.FileType
	if fileType == "" {
		fileType = mime.TypeByExtension(path.Ext(req.FileURL))
	}
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = path.Base(req.FileURL)
	}

	return &models.Attachment{URL: req.FileURL, Type: fileType, Name: fileName}
}

func CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	channelID, ok := queryID(r, "channelID")
	if !ok {
		http.Error(w, "Channel ID missing", http.StatusNotFound)
		return
	}

	var request messageRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	msg, err := messageStore.CreateMessage(channelID, userID, request.Content, request.attachment())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	// best-effort live delivery: the message is already durable, clients
	// that miss the event catch up on their next paginated fetch
	err = liveHub.PublishMessage(msg.ChannelID, msg)
	if err != nil {
		sugar.Error(err)
	}

	err = json.NewEncoder(w).Encode(msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func GetMessageList(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	sessionID := requestSessionID(r)

	channelID, ok := queryID(r, "channelID")
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	cursor, ok := cursorParam(r)
	if !ok {
		http.Error(w, "Invalid cursor", http.StatusBadRequest)
		return
	}

	// membership is checked here, so only members ever reach the live
	// subscription below
	page, err := messageStore.FetchPage(channelID, userID, cursor, 0)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	// viewing a channel moves the session's live subscription onto it
	_, err = liveHub.SwitchChat(sessionID, channelID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(page)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func UpdateMessage(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	messageID, ok := urlParamID(r, "messageID")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	var request messageRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	msg, err := messageStore.UpdateMessage(messageID, userID, request.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	err = liveHub.PublishMessage(msg.ChannelID, msg)
	if err != nil {
		sugar.Error(err)
	}

	err = json.NewEncoder(w).Encode(msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	messageID, ok := urlParamID(r, "messageID")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	msg, err := messageStore.SoftDeleteMessage(messageID, userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	// a soft delete is an update on the wire: the cleared message stays in
	// the thread
	err = liveHub.PublishMessage(msg.ChannelID, msg)
	if err != nil {
		sugar.Error(err)
	}

	err = json.NewEncoder(w).Encode(msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
