package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cquiz-service/internal/domain"
	"cquiz-service/internal/identity"
	"cquiz-service/internal/repo"
	"cquiz-service/internal/store/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.TestRepository, *repo.ResultRepository) {
	t.Helper()
	kv := memory.NewStore()
	tests := repo.NewTestRepository(kv, "cquiz_tests_v2", repo.Hooks{}, nil)
	results := repo.NewResultRepository(kv, "cquiz_results_v2", nil)
	handler := NewWSHandler(identity.DefaultDirectory(), tests, results, "cquiz_user_v2", 50*time.Millisecond, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tests, results
}

func dial(t *testing.T, server *httptest.Server, roll, password string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?roll=" + roll + "&password=" + password
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}

func TestTeacherDashboardStream(t *testing.T) {
	server, tests, _ := newTestServer(t)

	if _, err := tests.Save(context.Background(), domain.Test{
		ID:        "t1",
		Title:     "Algebra",
		CreatedBy: "TCH001",
		Questions: []domain.Question{{Text: "x?", Options: []string{"1", "2"}, CorrectIndex: 0}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	conn := dial(t, server, "TCH001", "TC01")

	typ, payload := readNext(t, conn)
	if typ != "authenticated" {
		t.Fatalf("expected authenticated, got %s", typ)
	}
	if payload["role"] != "teacher" {
		t.Fatalf("expected teacher role, got %v", payload["role"])
	}

	typ, payload = readNext(t, conn)
	if typ != "dashboard" {
		t.Fatalf("expected dashboard snapshot, got %s", typ)
	}
	if payload["myTestsHtml"] == "" {
		t.Fatalf("expected rendered tests, got %v", payload)
	}
}

func TestLoginRejectedOverWS(t *testing.T) {
	server, _, _ := newTestServer(t)
	conn := dial(t, server, "STU101", "wrong")

	typ, payload := readNext(t, conn)
	if typ != "error" {
		t.Fatalf("expected error, got %s", typ)
	}
	if payload["message"] != domain.ErrInvalidCredentials.Error() {
		t.Fatalf("expected invalid credentials message, got %v", payload["message"])
	}
}

func TestStudentSubmitFlow(t *testing.T) {
	server, tests, results := newTestServer(t)

	if _, err := tests.Save(context.Background(), domain.Test{
		ID:        "t1",
		Title:     "Algebra",
		CreatedBy: "TCH001",
		Questions: []domain.Question{
			{Text: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1},
			{Text: "3+3?", Options: []string{"5", "6"}, CorrectIndex: 1},
		},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	conn := dial(t, server, "STU101", "ST01")

	if typ, _ := readNext(t, conn); typ != "authenticated" {
		t.Fatalf("expected authenticated, got %s", typ)
	}
	var listMsg struct {
		Type string `json:"type"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&listMsg); err != nil {
		t.Fatalf("read tests: %v", err)
	}
	if listMsg.Type != "tests" {
		t.Fatalf("expected tests list, got %s", listMsg.Type)
	}

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"testId":  "t1",
			"answers": map[string]int{"0": 1, "1": 0},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	typ, payload := readNext(t, conn)
	if typ != "result" {
		t.Fatalf("expected result, got %s", typ)
	}
	if payload["score"].(float64) != 1 || payload["total"].(float64) != 2 {
		t.Fatalf("expected 1/2, got %v", payload)
	}

	stored, _ := results.List(context.Background())
	if len(stored) != 1 || stored[0].StudentRoll != "STU101" {
		t.Fatalf("expected stored submission, got %+v", stored)
	}
}

func TestStudentListOmitsAnswerKey(t *testing.T) {
	server, tests, _ := newTestServer(t)

	if _, err := tests.Save(context.Background(), domain.Test{
		ID:        "t1",
		Title:     "Algebra",
		CreatedBy: "TCH001",
		Questions: []domain.Question{{Text: "x?", Options: []string{"1", "2"}, CorrectIndex: 1}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	conn := dial(t, server, "STU102", "ST02")
	if typ, _ := readNext(t, conn); typ != "authenticated" {
		t.Fatalf("expected authenticated")
	}

	var msg struct {
		Type    string           `json:"type"`
		Payload []map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read tests: %v", err)
	}
	if msg.Type != "tests" || len(msg.Payload) != 1 {
		t.Fatalf("expected one test, got %+v", msg)
	}
	questions := msg.Payload[0]["questions"].([]any)
	if _, ok := questions[0].(map[string]any)["correctIndex"]; ok {
		t.Fatalf("expected answer key stripped, got %+v", questions[0])
	}
}
