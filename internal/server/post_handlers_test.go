package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/socivio/socivio/internal/models"
)

func seedAccount(t *testing.T, srv *Server, email string) models.InstagramAccount {
	t.Helper()

	var user models.User
	if err := srv.db.Where("email = ?", email).First(&user).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	account := models.InstagramAccount{
		UserID:     user.ID,
		ExternalID: "17841400000000000",
		Username:   "acme",
		PageID:     "p1",
		PageName:   "Acme Co",
	}
	if err := srv.db.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}

func TestListPostsIncludesCommentCounts(t *testing.T) {
	srv := newTestServer(t)
	resp := registerTestUser(t, srv, "ana@example.com")
	account := seedAccount(t, srv, "ana@example.com")

	older := models.Post{
		AccountID:  account.ID,
		ExternalID: "m1",
		Caption:    "launch day",
		PostedAt:   time.Now().Add(-2 * time.Hour),
	}
	newer := models.Post{
		AccountID:  account.ID,
		ExternalID: "m2",
		Caption:    "behind the scenes",
		PostedAt:   time.Now().Add(-1 * time.Hour),
	}
	for _, post := range []*models.Post{&older, &newer} {
		if err := srv.db.Create(post).Error; err != nil {
			t.Fatalf("failed to seed post: %v", err)
		}
	}

	for i, text := range []string{"love it", "take my money"} {
		comment := models.Comment{
			PostID:     older.ID,
			ExternalID: "c" + string(rune('1'+i)),
			Username:   "fan",
			Text:       text,
		}
		if err := srv.db.Create(&comment).Error; err != nil {
			t.Fatalf("failed to seed comment: %v", err)
		}
	}

	w := doJSON(t, srv, "GET", "/api/posts?account="+account.ID, resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The key must be on the wire even when the count is zero
	var raw []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	for i, item := range raw {
		if _, ok := item["comment_count"]; !ok {
			t.Errorf("post %d is missing comment_count: %v", i, item)
		}
	}

	var posts []PostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("failed to decode posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	// Newest first, counts attached to the right post
	if posts[0].ID != newer.ID || posts[0].CommentCount != 0 {
		t.Errorf("unexpected first post: id=%s count=%d", posts[0].ID, posts[0].CommentCount)
	}
	if posts[1].ID != older.ID || posts[1].CommentCount != 2 {
		t.Errorf("unexpected second post: id=%s count=%d", posts[1].ID, posts[1].CommentCount)
	}
}
