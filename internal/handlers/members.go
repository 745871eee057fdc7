package handlers

import (
	"encoding/json"
	"net/http"

	"chatcord-backend/internal/models"
)

func GetMemberList(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	serverID, ok := queryID(r, "serverID")
	if !ok {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	var isMember bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM server_members WHERE server_id = ? AND user_id = ?)", serverID, userID).Scan(&isMember)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !isMember {
		http.Error(w, "You are not a member of this server", http.StatusForbidden)
		return
	}

	rows, err := db.Query(`
		SELECT
			m.server_id,
			m.user_id,
			m.role,
			m.since
		FROM
			server_members m
		WHERE
			m.server_id = ?
		`, serverID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var member models.Member
		err := rows.Scan(&member.ServerID, &member.UserID, &member.Role, &member.Since)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(members)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
