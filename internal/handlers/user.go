package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"chatcord-backend/internal/fileHandlers"
	"chatcord-backend/internal/models"
)

func GetUserInfo(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	paramUserID := r.URL.Query().Get("userID")
	if paramUserID == "" {
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var requestedUserID int64

	if paramUserID == "self" {
		requestedUserID = userID
	} else {
		var err error
		requestedUserID, err = strconv.ParseInt(paramUserID, 10, 64)
		if err != nil {
			http.Error(w, "", http.StatusBadRequest)
			return
		}
	}

	var userClient models.User
	err := db.QueryRow("SELECT display_name, picture FROM users WHERE id = ?", requestedUserID).Scan(&userClient.DisplayName, &userClient.Picture)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(userClient)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func UpdateUserInfo(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	{
		displayName := r.URL.Query().Get("displayName")
		if displayName != "" {
			_, err := db.Exec("UPDATE users SET display_name = ? WHERE id = ?", displayName, userID)
			if err != nil {
				sugar.Error(err)
				http.Error(w, "", http.StatusInternalServerError)
				return
			}
		}
	}
	{
		pictureName, err := fileHandlers.HandleAvatarPicture(r)
		if err != nil && err != http.ErrMissingFile {
			sugar.Error(err)
			http.Error(w, "", http.StatusBadRequest)
			return
		} else if err != http.ErrMissingFile {
			_, err := db.Exec("UPDATE users SET picture = ? WHERE id = ?", pictureName, userID)
			if err != nil {
				sugar.Error(err)
				http.Error(w, "", http.StatusInternalServerError)
				return
			}
		}
	}
}
