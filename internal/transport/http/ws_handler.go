// Package http wires browser-side viewers to the core over websockets. It is
// host glue: the repositories and the refresh loop never depend on it.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cquiz-service/internal/auth"
	"cquiz-service/internal/dashboard"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/identity"
	"cquiz-service/internal/repo"
	"cquiz-service/internal/store/memory"
)

// WSHandler upgrades connections and routes them by role: teachers get the
// live dashboard stream, students get the test list and a submit flow.
// Each connection owns its own session store, like a browser tab.
type WSHandler struct {
	directory  *identity.Directory
	tests      *repo.TestRepository
	results    *repo.ResultRepository
	sessionKey string
	interval   time.Duration
	log        *zap.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(directory *identity.Directory, tests *repo.TestRepository, results *repo.ResultRepository, sessionKey string, interval time.Duration, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		directory:  directory,
		tests:      tests,
		results:    results,
		sessionKey: sessionKey,
		interval:   interval,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type viewTestPayload struct {
	TestID string `json:"testId"`
}

type submitPayload struct {
	TestID  string      `json:"testId"`
	Answers map[int]int `json:"answers"`
}

type submitResult struct {
	TestID string `json:"testId"`
	Score  int    `json:"score"`
	Total  int    `json:"total"`
}

// studentQuestion is a question with the answer key stripped.
type studentQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type studentTest struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Questions []studentQuestion `json:"questions"`
}

// ServeWS authenticates the connection and runs the role-specific loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roll := r.URL.Query().Get("roll")
	password := r.URL.Query().Get("password")
	if roll == "" || password == "" {
		http.Error(w, "missing roll or password", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// One session store per connection, like one browser tab.
	manager := auth.NewManager(h.directory, memory.NewStore(), h.sessionKey, auth.Hooks{})
	user, err := manager.Login(r.Context(), roll, password)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[domain.User]{Type: "authenticated", Payload: user})

	switch user.Role {
	case domain.RoleTeacher:
		h.serveTeacher(r.Context(), conn, user)
	case domain.RoleStudent:
		h.serveStudent(r.Context(), conn, user)
	default:
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unknown role"}})
	}
}

func (h *WSHandler) serveTeacher(ctx context.Context, conn *websocket.Conn, user domain.User) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := dashboard.NewPoller(h.tests, h.results, user, h.interval, h.log)
	go poller.Run(ctx)

	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()

	if _, err := poller.Refresh(ctx); err != nil {
		h.log.Warn("initial refresh failed", zap.Error(err))
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "dashboard", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "viewTest":
			var payload viewTestPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid viewTest payload"}}
				continue
			}
			detail, err := poller.ViewTest(ctx, payload.TestID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "testDetail", Payload: detail}
		case "closeTest":
			poller.CloseTest()
		case "deleteTest":
			var payload viewTestPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid deleteTest payload"}}
				continue
			}
			if err := h.tests.Delete(ctx, h.results, payload.TestID); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if _, err := poller.Refresh(ctx); err != nil {
				h.log.Warn("refresh after delete failed", zap.Error(err))
			}
		case "refresh":
			if _, err := poller.Refresh(ctx); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) serveStudent(ctx context.Context, conn *websocket.Conn, user domain.User) {
	tests, err := h.tests.List(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[[]studentTest]{Type: "tests", Payload: sanitizeTests(tests)})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}})
				continue
			}
			test, err := h.tests.Get(ctx, payload.TestID)
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			score, total := test.Grade(payload.Answers)
			if _, err := h.results.Save(ctx, domain.Result{
				TestID:      test.ID,
				TestTitle:   test.Title,
				StudentRoll: user.Roll,
				Score:       score,
				Total:       total,
				Answers:     payload.Answers,
			}); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			_ = conn.WriteJSON(outboundMessage[submitResult]{Type: "result", Payload: submitResult{TestID: test.ID, Score: score, Total: total}})
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

func sanitizeTests(tests []domain.Test) []studentTest {
	out := make([]studentTest, 0, len(tests))
	for _, t := range tests {
		st := studentTest{ID: t.ID, Title: t.Title, Questions: make([]studentQuestion, 0, len(t.Questions))}
		for _, q := range t.Questions {
			st.Questions = append(st.Questions, studentQuestion{Text: q.Text, Options: q.Options})
		}
		out = append(out, st)
	}
	return out
}
