package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asistenciaBot/logger"
)

type staticTokens map[int64]string

func (t staticTokens) Token(chatID int64) string { return t[chatID] }

type recordingHandler struct {
	calls []int64
}

func (h *recordingHandler) AuthFailure(ctx context.Context, chatID int64) {
	h.calls = append(h.calls, chatID)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, tokens, logger.GetInstance()), srv
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}, staticTokens{7: "tok-7"})

	if _, err := client.Usuarios(context.Background(), 7); err != nil {
		t.Fatalf("Usuarios: %v", err)
	}
	if gotAuth != "Bearer tok-7" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-7")
	}
}

func TestClientLoginSendsNoToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"nombreUsuario":"ana","tipoUsuario":"ADMIN","token":"fresh"}`))
	}, staticTokens{7: "stale-token"})

	resp, err := client.Login(context.Background(), 7, Credentials{NombreUsuario: "ana", Contrasena: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("login request carried Authorization %q, want none", gotAuth)
	}
	if resp.Token != "fresh" {
		t.Errorf("Token = %q, want %q", resp.Token, "fresh")
	}
}

func TestClientUnauthorizedTearsSessionDown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"mensaje":"token vencido"}`))
	}, staticTokens{7: "tok-7"})

	handler := &recordingHandler{}
	client.SetAuthFailureHandler(handler)

	_, err := client.Grupos(context.Background(), 7)
	if !IsAuthentication(err) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if len(handler.calls) != 1 || handler.calls[0] != 7 {
		t.Errorf("AuthFailure calls = %v, want [7]", handler.calls)
	}
}

func TestClientUnauthorizedLoginSkipsTeardown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"mensaje":"credenciales inválidas"}`))
	}, staticTokens{7: "stale-token"})

	handler := &recordingHandler{}
	client.SetAuthFailureHandler(handler)

	_, err := client.Login(context.Background(), 7, Credentials{NombreUsuario: "ana", Contrasena: "mala"})
	if !IsAuthentication(err) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if len(handler.calls) != 0 {
		t.Errorf("AuthFailure calls = %v, want none for a rejected login", handler.calls)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"conflict", http.StatusConflict, `{"mensaje":"ya registrada"}`, IsConflict},
		{"capacity", http.StatusConflict, `{"mensaje":"grupo lleno","codigo":"GRUPO_LLENO"}`, IsCapacity},
		{"generic", http.StatusInternalServerError, `{"mensaje":"boom"}`, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, staticTokens{7: "tok"})

			err := client.TomarAsistencia(context.Background(), 7, TomarAsistenciaRequest{})
			if err == nil || !tt.check(err) {
				t.Errorf("err = %v, wrong type", err)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"transport", &TransportError{Err: errors.New("dial refused")}, "Error de conexión con el servidor. Intente de nuevo."},
		{"api without mensaje", &APIError{Status: 500}, "Error de conexión con el servidor. Intente de nuevo."},
		{"api with mensaje", &APIError{Status: 400, Mensaje: "fecha inválida"}, "fecha inválida"},
		{"conflict", &ConflictError{Mensaje: "ya registrada"}, "ya registrada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force a connection failure

	client := NewClient(srv.URL, time.Second, staticTokens{}, logger.GetInstance())
	_, err := client.Usuarios(context.Background(), 1)

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}
