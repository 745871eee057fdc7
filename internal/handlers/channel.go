package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"chatcord-backend/internal/hub"
	"chatcord-backend/internal/models"
	"chatcord-backend/internal/snowflake"
	"chatcord-backend/internal/store"
	"chatcord-backend/internal/validator"
)

func CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	serverID, ok := queryID(r, "serverID")
	if !ok {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	// owners, admins and moderators can manage channels
	allowed, err := messageStore.HasElevatedRole(serverID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !allowed {
		sugar.Warnf("User ID [%d] tried to create a channel in server ID [%d] without permission", userID, serverID)
		http.Error(w, "You are not allowed to manage channels here", http.StatusForbidden)
		return
	}

	channelName := r.URL.Query().Get("name")
	if err := validator.ChannelName(channelName); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	channelID, err := snowflake.Generate()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	channel := models.Channel{
		ID:       channelID,
		ServerID: serverID,
		Name:     channelName,
	}

	_, err = db.Exec("INSERT INTO channels VALUES(?, ?, ?)", channel.ID, channel.ServerID, channel.Name)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = liveHub.Publish(hub.ServerKey(serverID), hub.ChannelCreated, channel)
	if err != nil {
		sugar.Error(err)
	}

	err = json.NewEncoder(w).Encode(channel)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func GetChannelList(w http.ResponseWriter, r *http.Request) {
	sessionID := requestSessionID(r)

	serverID, ok := queryID(r, "serverID")
	if !ok {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	rows, err := db.Query("SELECT id, server_id, name FROM channels WHERE server_id = ?", serverID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	channels := []models.Channel{}

	for rows.Next() {
		var channel models.Channel

		err := rows.Scan(&channel.ID, &channel.ServerID, &channel.Name)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	// viewing a server moves the session's server subscription onto it
	_, err = liveHub.SwitchServer(sessionID, serverID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(channels)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func RenameChannel(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	channelID, ok := urlParamID(r, "channelID")
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := lookupChannel(channelID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	allowed, err := messageStore.HasElevatedRole(channel.ServerID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, "You are not allowed to manage channels here", http.StatusForbidden)
		return
	}

	if channel.Name == "general" {
		http.Error(w, "The general channel can't be renamed", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if err := validator.ChannelName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = db.Exec("UPDATE channels SET name = ? WHERE id = ?", name, channelID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	channel.Name = name

	err = liveHub.Publish(hub.ServerKey(channel.ServerID), hub.ChannelModified, channel)
	if err != nil {
		sugar.Error(err)
	}

	err = json.NewEncoder(w).Encode(channel)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func DeleteChannel(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	channelID, ok := urlParamID(r, "channelID")
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := lookupChannel(channelID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	allowed, err := messageStore.HasElevatedRole(channel.ServerID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, "You are not allowed to manage channels here", http.StatusForbidden)
		return
	}

	if channel.Name == "general" {
		http.Error(w, "The general channel can't be deleted", http.StatusBadRequest)
		return
	}

	_, err = db.Exec("DELETE FROM channels WHERE id = ?", channelID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = liveHub.Publish(hub.ServerKey(channel.ServerID), hub.ChannelDeleted, channel)
	if err != nil {
		sugar.Error(err)
	}
}

func lookupChannel(channelID int64) (models.Channel, error) {
	var channel models.Channel
	err := db.QueryRow("SELECT id, server_id, name FROM channels WHERE id = ?", channelID).Scan(&channel.ID, &channel.ServerID, &channel.Name)
	if err == sql.ErrNoRows {
		return channel, store.ErrNotFound
	}
	return channel, err
}
