package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
)

func authedRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	record := &services.SessionRecord{
		SessionID: "sess-abc",
		Data: &services.SessionData{
			Authenticated: true,
			UserID:        "u1",
			Username:      "alice",
			DisplayName:   "Alice",
		},
	}
	return req.WithContext(auth.ContextWithSession(req.Context(), record))
}

func TestCreateComment_UsesSessionIdentity(t *testing.T) {
	var gotUserID string
	service := &mockCommentService{
		CreateCommentFunc: func(ctx context.Context, userID, body string) (*models.Comment, error) {
			gotUserID = userID
			return &models.Comment{ID: "c1", UserID: userID, Body: body}, nil
		},
	}
	handler := NewCommentsHandler(service)

	req := authedRequest("POST", "/api/comments", `{"body":"first post"}`)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotUserID != "u1" {
		t.Errorf("comment attributed to %q, want u1", gotUserID)
	}

	var comment models.Comment
	if err := json.Unmarshal(w.Body.Bytes(), &comment); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if comment.DisplayName != "Alice" {
		t.Errorf("display name = %q", comment.DisplayName)
	}
}

func TestCreateComment_WithoutSessionReturns401(t *testing.T) {
	handler := NewCommentsHandler(&mockCommentService{})

	req := httptest.NewRequest("POST", "/api/comments", strings.NewReader(`{"body":"x"}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestCreateComment_EmptyBodyRejected(t *testing.T) {
	handler := NewCommentsHandler(&mockCommentService{})

	req := authedRequest("POST", "/api/comments", `{"body":""}`)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListComments_PassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	service := &mockCommentService{
		ListCommentsFunc: func(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.Comment{{ID: "c1", Body: "hi"}}, nil
		},
	}
	handler := NewCommentsHandler(service)

	req := httptest.NewRequest("GET", "/api/comments?limit=10&offset=20", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Errorf("pagination = (%d, %d), want (10, 20)", gotLimit, gotOffset)
	}
}
