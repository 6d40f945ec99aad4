package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestSessionStoreLifecycle(t *testing.T) {
	sessions := NewSessionStore()
	ctx := context.Background()

	token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt"}
	session, err := sessions.Create(ctx, token, "u1", "Tester")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ID == "" {
		t.Fatal("session id empty")
	}

	got := sessions.Get(ctx, session.ID)
	if got == nil || got.UserID != "u1" {
		t.Fatalf("Get() = %+v", got)
	}

	fresh := &oauth2.Token{AccessToken: "at2", RefreshToken: "rt"}
	sessions.UpdateToken(ctx, session.ID, fresh)
	if got := sessions.Get(ctx, session.ID); got.Token.AccessToken != "at2" {
		t.Errorf("token not updated: %+v", got.Token)
	}

	sessions.Delete(ctx, session.ID)
	if sessions.Get(ctx, session.ID) != nil {
		t.Error("session survived deletion")
	}
}

func TestSessionStoreGetFromRequest(t *testing.T) {
	sessions := NewSessionStore()
	session, err := sessions.Create(context.Background(), &oauth2.Token{AccessToken: "at"}, "u1", "Tester")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	if got := sessions.GetFromRequest(req); got == nil || got.ID != session.ID {
		t.Errorf("GetFromRequest() = %+v", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := sessions.GetFromRequest(bare); got != nil {
		t.Errorf("GetFromRequest() without cookie = %+v", got)
	}
}

func TestSessionTokenSaverWritesBack(t *testing.T) {
	sessions := NewSessionStore()
	session, err := sessions.Create(context.Background(), &oauth2.Token{AccessToken: "old"}, "u1", "Tester")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	saver := &sessionTokenSaver{sessions: sessions, sessionID: session.ID}
	if err := saver.SaveToken(context.Background(), &oauth2.Token{AccessToken: "new"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	if got := sessions.Get(context.Background(), session.ID); got.Token.AccessToken != "new" {
		t.Errorf("token = %q, want new", got.Token.AccessToken)
	}
}
