package store

import (
	"errors"
	"testing"

	"chatcord-backend/internal/models"
)

func TestGetOrCreateConversation(t *testing.T) {
	s := newTestStore(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	tests := []struct {
		name          string
		userID        int64
		otherUserID   int64
		expectedError error
	}{
		{
			name:          "Conversation with yourself",
			userID:        alice,
			otherUserID:   alice,
			expectedError: ErrInvalidArgument,
		},
		{
			name:          "Unknown other user",
			userID:        alice,
			otherUserID:   424242,
			expectedError: ErrNotFound,
		},
		{
			name:        "First contact",
			userID:      alice,
			otherUserID: bob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetOrCreateConversation(tt.userID, tt.otherUserID)
			if !errors.Is(err, tt.expectedError) {
				t.Errorf("got error [%v], want [%v]", err, tt.expectedError)
			}
		})
	}
}

func TestConversationPairIsNormalized(t *testing.T) {
	s := newTestStore(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	first, err := s.GetOrCreateConversation(alice, bob)
	if err != nil {
		t.Fatal(err)
	}

	// asking from the other side must resolve to the same thread
	second, err := s.GetOrCreateConversation(bob, alice)
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("the same pair resolved to two conversations: %d and %d", first.ID, second.ID)
	}
	if first.UserOneID > first.UserTwoID {
		t.Error("pair must be stored smaller id first")
	}
}

func TestDirectMessageFlow(t *testing.T) {
	s := newTestStore(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	eve := createTestUser(t, s, "eve")

	conversation, err := s.GetOrCreateConversation(alice, bob)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.CreateDirectMessage(conversation.ID, eve, "let me in", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("outsider create got [%v], want [%v]", err, ErrNotFound)
	}

	msg, err := s.CreateDirectMessage(conversation.ID, alice, "hi bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ConversationID != conversation.ID {
		t.Error("message landed in the wrong conversation")
	}

	_, err = s.FetchDirectPage(conversation.ID, eve, 0, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("outsider fetch got [%v], want [%v]", err, ErrNotFound)
	}

	page, err := s.FetchDirectPage(conversation.ID, bob, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != msg.ID {
		t.Fatalf("participant fetch returned %d messages", len(page.Items))
	}
}

func TestDirectMessagePagination(t *testing.T) {
	s := newTestStore(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	conversation, err := s.GetOrCreateConversation(alice, bob)
	if err != nil {
		t.Fatal(err)
	}

	var ids []int64
	for i := 0; i < 3; i++ {
		msg, err := s.CreateDirectMessage(conversation.ID, alice, "ping", nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, msg.ID)
	}

	page, err := s.FetchDirectPage(conversation.ID, alice, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d messages, want 2", len(page.Items))
	}
	if page.Items[0].ID != ids[2] || page.Items[1].ID != ids[1] {
		t.Error("page is not newest first")
	}
	if page.NextCursor == "" {
		t.Fatal("full page must carry a cursor")
	}

	rest, err := s.FetchDirectPage(conversation.ID, alice, page.Items[1].ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest.Items) != 1 || rest.Items[0].ID != ids[0] {
		t.Error("second page must hold exactly the oldest message")
	}
	if rest.NextCursor != "" {
		t.Error("short page must not carry a cursor")
	}
}

func TestDirectMessageAuthorOnly(t *testing.T) {
	s := newTestStore(t)

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	conversation, err := s.GetOrCreateConversation(alice, bob)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := s.CreateDirectMessage(conversation.ID, alice, "private", &models.Attachment{URL: "/cdn/attachments/x.png", Type: "image/png", Name: "x.png"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.UpdateDirectMessage(msg.ID, bob, "tampered")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("edit by the other participant got [%v], want [%v]", err, ErrPermissionDenied)
	}

	_, err = s.SoftDeleteDirectMessage(msg.ID, bob)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("delete by the other participant got [%v], want [%v]", err, ErrPermissionDenied)
	}

	deleted, err := s.SoftDeleteDirectMessage(msg.ID, alice)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted.Deleted || deleted.Content != nil || deleted.Attachment != nil {
		t.Error("author delete must clear the message in place")
	}
}
