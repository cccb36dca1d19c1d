package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/database"
	"github.com/moodmeter/moodmeter/internal/mood"
)

type fakeStore struct {
	database.Store

	creds    map[int64]string // user_id -> password hash
	chats    map[int64][]database.Chat
	links    map[string]bool // "user:chat"
	messages []database.Message
}

func (f *fakeStore) GetCredential(ctx context.Context, userID int64) (*database.Credential, error) {
	hash, ok := f.creds[userID]
	if !ok {
		return nil, nil
	}
	return &database.Credential{UserID: userID, PasswordHash: hash}, nil
}

func (f *fakeStore) GetUserChats(ctx context.Context, userID int64) ([]database.Chat, error) {
	return f.chats[userID], nil
}

func (f *fakeStore) IsUserLinked(ctx context.Context, userID, chatID int64) (bool, error) {
	return f.links[fmt.Sprintf("%d:%d", userID, chatID)], nil
}

func (f *fakeStore) GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]database.Message, error) {
	var out []database.Message
	for _, m := range f.messages {
		if m.ChatID == chatID && !m.Timestamp.Before(start) && m.Timestamp.Before(end) {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()
	cfg := config.DashboardConfig{
		Enabled:   true,
		Addr:      ":0",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		CacheTTL:  time.Minute,
	}
	return NewServer(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func doJSON(s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server, userID int64, password string) string {
	t.Helper()
	w := doJSON(s, http.MethodPost, "/api/login", "", fmt.Sprintf(`{"user_id": %d, "password": %q}`, userID, password))
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login response: %v", err)
	}
	return resp.Token
}

func TestLogin(t *testing.T) {
	t.Parallel()

	store := &fakeStore{creds: map[int64]string{42: mustHash(t, "hunter2")}}
	s := newTestServer(t, store)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		t.Parallel()
		token := login(t, s, 42, "hunter2")
		if token == "" {
			t.Fatal("empty token")
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		t.Parallel()
		w := doJSON(s, http.MethodPost, "/api/login", "", `{"user_id": 42, "password": "wrong"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("unknown user gets the same rejection", func(t *testing.T) {
		t.Parallel()
		w := doJSON(s, http.MethodPost, "/api/login", "", `{"user_id": 7, "password": "hunter2"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		t.Parallel()
		w := doJSON(s, http.MethodPost, "/api/login", "", `{"user_id": 42}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStore{})

	testCases := []struct {
		name  string
		token string
	}{
		{name: "no token"},
		{name: "garbage token", token: "not-a-jwt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := doJSON(s, http.MethodGet, "/api/chats", tc.token, "")
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestListChats(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		creds: map[int64]string{42: mustHash(t, "hunter2")},
		chats: map[int64][]database.Chat{
			42: {{ChatID: -100, Name: "team", Status: database.ChatActive}},
		},
	}
	s := newTestServer(t, store)
	token := login(t, s, 42, "hunter2")

	w := doJSON(s, http.MethodGet, "/api/chats", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Chats []chatResponse `json:"chats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chats) != 1 || resp.Chats[0].ChatID != -100 || resp.Chats[0].Name != "team" {
		t.Errorf("unexpected chats payload: %+v", resp.Chats)
	}
}

func TestMoodSeriesEndpoint(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		creds: map[int64]string{42: mustHash(t, "hunter2")},
		links: map[string]bool{"42:-100": true},
		messages: []database.Message{
			{ChatID: -100, Timestamp: day.Add(9 * time.Hour), Label: mood.Positive},
			{ChatID: -100, Timestamp: day.Add(10 * time.Hour), Label: mood.Negative},
			{ChatID: -100, Timestamp: day.Add(11 * time.Hour), Label: mood.Positive},
		},
	}
	s := newTestServer(t, store)
	token := login(t, s, 42, "hunter2")

	w := doJSON(s, http.MethodGet, "/api/chats/-100/mood?start=2024-02-10&end=2024-02-10&granularity=day", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Series []mood.MoodPoint `json:"series"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Series) != 1 {
		t.Fatalf("expected one daily bucket, got %d", len(resp.Series))
	}
	// (+1 -1 +1) / 3
	if diff := resp.Series[0].MeanMood - 1.0/3.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("mean mood = %v, want 1/3", resp.Series[0].MeanMood)
	}
}

func TestCountSeriesEndpoint(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		creds: map[int64]string{42: mustHash(t, "hunter2")},
		links: map[string]bool{"42:-100": true},
		messages: []database.Message{
			{ChatID: -100, Timestamp: day.Add(9 * time.Hour), Label: mood.Positive},
			{ChatID: -100, Timestamp: day.Add(10 * time.Hour), Label: mood.Positive},
			{ChatID: -100, Timestamp: day.Add(11 * time.Hour), Label: mood.Neutral},
		},
	}
	s := newTestServer(t, store)
	token := login(t, s, 42, "hunter2")

	w := doJSON(s, http.MethodGet, "/api/chats/-100/counts?start=2024-02-10&end=2024-02-10", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Series []mood.CountPoint `json:"series"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Series) != 2 {
		t.Fatalf("expected two sparse (period,label) points, got %+v", resp.Series)
	}
	total := 0
	for _, p := range resp.Series {
		total += p.Count
	}
	if total != 3 {
		t.Errorf("counts sum to %d, want 3", total)
	}
}

func TestSeriesValidation(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		creds: map[int64]string{42: mustHash(t, "hunter2")},
		links: map[string]bool{"42:-100": true},
	}
	s := newTestServer(t, store)
	token := login(t, s, 42, "hunter2")

	testCases := []struct {
		name string
		path string
		want int
	}{
		{name: "start after end", path: "/api/chats/-100/mood?start=2024-02-20&end=2024-02-10", want: http.StatusBadRequest},
		{name: "malformed start", path: "/api/chats/-100/mood?start=Feb-10&end=2024-02-10", want: http.StatusBadRequest},
		{name: "missing end", path: "/api/chats/-100/mood?start=2024-02-10", want: http.StatusBadRequest},
		{name: "bad chat id", path: "/api/chats/abc/mood?start=2024-02-10&end=2024-02-10", want: http.StatusBadRequest},
		{name: "not linked to chat", path: "/api/chats/-999/mood?start=2024-02-10&end=2024-02-10", want: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := doJSON(s, http.MethodGet, tc.path, token, "")
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
