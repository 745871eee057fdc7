package handlers

import (
	"encoding/json"
	"net/http"
)

func StartConversation(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	otherUserID, ok := queryID(r, "userID")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	conversation, err := messageStore.GetOrCreateConversation(userID, otherUserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	err = json.NewEncoder(w).Encode(conversation)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func CreateDirectMessage(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	conversationID, ok := queryID(r, "conversationID")
	if !ok {
		http.Error(w, "Conversation ID missing", http.StatusNotFound)
		return
	}

	var request messageRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	msg, err := messageStore.CreateDirectMessage(conversationID, userID, request.Content, request.attachment())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	err = liveHub.PublishMessage(msg.ConversationID, msg)
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

func GetDirectMessageList(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	sessionID := requestSessionID(r)

	conversationID, ok := queryID(r, "conversationID")
	if !ok {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	cursor, ok := cursorParam(r)
	if !ok {
		http.Error(w, "Invalid cursor", http.StatusBadRequest)
		return
	}

	page, err := messageStore.FetchDirectPage(conversationID, userID, cursor, 0)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	_, err = liveHub.SwitchChat(sessionID, conversationID)
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

func UpdateDirectMessage(w http.ResponseWriter, r *http.Request) {
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

	msg, err := messageStore.UpdateDirectMessage(messageID, userID, request.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	err = liveHub.PublishMessage(msg.ConversationID, msg)
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

func DeleteDirectMessage(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	messageID, ok := urlParamID(r, "messageID")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	msg, err := messageStore.SoftDeleteDirectMessage(messageID, userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	err = liveHub.PublishMessage(msg.ConversationID, msg)
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
