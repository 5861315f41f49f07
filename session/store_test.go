package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"asistenciaBot/api"
	"asistenciaBot/database"
	"asistenciaBot/logger"
)

type fakeRepo struct {
	rows      map[int64]database.SessionRow
	saveErr   error
	allErr    error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]database.SessionRow)}
}

func (r *fakeRepo) Save(row database.SessionRow) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.rows[row.ChatID] = row
	return nil
}

func (r *fakeRepo) All() ([]database.SessionRow, error) {
	if r.allErr != nil {
		return nil, r.allErr
	}
	out := make([]database.SessionRow, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeRepo) Delete(chatID int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.rows, chatID)
	return nil
}

type fakeAuth struct {
	resp api.LoginResponse
	err  error
}

func (a *fakeAuth) Login(ctx context.Context, chatID int64, creds api.Credentials) (api.LoginResponse, error) {
	return a.resp, a.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestStoreLoginPersistsAndAdopts(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, logger.GetInstance())
	store.SetAuth(&fakeAuth{resp: api.LoginResponse{
		ID:            10,
		NombreUsuario: "ana",
		Email:         "ana@uni.edu",
		TipoUsuario:   api.RoleProfesor,
		Token:         "tok-ana",
	}})

	sess, err := store.Login(context.Background(), 7, api.Credentials{NombreUsuario: "ana", Contrasena: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.TipoUsuario != api.RoleProfesor || sess.UsuarioID != 10 {
		t.Errorf("session = %+v", sess)
	}

	if store.Token(7) != "tok-ana" {
		t.Errorf("Token(7) = %q, want %q", store.Token(7), "tok-ana")
	}
	row, ok := repo.rows[7]
	if !ok {
		t.Fatal("session row not persisted")
	}
	if row.Token != "tok-ana" || row.TipoUsuario != "PROFESOR" {
		t.Errorf("persisted row = %+v", row)
	}
}

func TestStoreLoginStorageFailureAdoptsNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")
	store := NewStore(repo, logger.GetInstance())
	store.SetAuth(&fakeAuth{resp: api.LoginResponse{ID: 1, TipoUsuario: api.RoleAdmin, Token: "tok"}})

	if _, err := store.Login(context.Background(), 7, api.Credentials{}); err == nil {
		t.Fatal("Login succeeded despite storage failure")
	}
	if _, ok := store.Current(7); ok {
		t.Error("session adopted in memory after persistence failed")
	}
	if store.Token(7) != "" {
		t.Error("token available after persistence failed")
	}
}

func TestStoreLoginRejectedLeavesStoreEmpty(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, logger.GetInstance())
	store.SetAuth(&fakeAuth{err: &api.AuthenticationError{Mensaje: "credenciales inválidas"}})

	if _, err := store.Login(context.Background(), 7, api.Credentials{}); err == nil {
		t.Fatal("Login succeeded with rejected credentials")
	}
	if _, ok := store.Current(7); ok {
		t.Error("session exists after rejected login")
	}
	if len(repo.rows) != 0 {
		t.Error("row persisted after rejected login")
	}
}

func TestStoreLogoutIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, logger.GetInstance())
	store.SetAuth(&fakeAuth{resp: api.LoginResponse{ID: 1, TipoUsuario: api.RoleAdmin, Token: "tok"}})

	if _, err := store.Login(context.Background(), 7, api.Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Logout(context.Background(), 7); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
	if _, ok := store.Current(7); ok {
		t.Error("session survives logout")
	}
	if len(repo.rows) != 0 {
		t.Error("row survives logout")
	}
}

func TestStoreInvalidateClearsMemoryEvenOnStorageError(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, logger.GetInstance())
	store.SetAuth(&fakeAuth{resp: api.LoginResponse{ID: 1, TipoUsuario: api.RoleAdmin, Token: "tok"}})

	if _, err := store.Login(context.Background(), 7, api.Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	repo.deleteErr = errors.New("db gone")

	store.Invalidate(context.Background(), 7)

	if store.Token(7) != "" {
		t.Error("rejected token still served after Invalidate")
	}
}

func TestStoreRestore(t *testing.T) {
	repo := newFakeRepo()
	repo.rows[1] = database.SessionRow{ChatID: 1, UsuarioID: 10, NombreUsuario: "ana", TipoUsuario: "PROFESOR", Token: "opaque-token"}
	repo.rows[2] = database.SessionRow{ChatID: 2, UsuarioID: 11, TipoUsuario: "ADMIN", Token: signedToken(t, time.Now().Add(-time.Hour))}
	repo.rows[3] = database.SessionRow{ChatID: 3, UsuarioID: 12, TipoUsuario: "PIRATA", Token: "tok"}
	repo.rows[4] = database.SessionRow{ChatID: 4, UsuarioID: 13, TipoUsuario: "ADMIN", Token: ""}
	repo.rows[5] = database.SessionRow{ChatID: 5, UsuarioID: 14, TipoUsuario: "ESTUDIANTE", Token: signedToken(t, time.Now().Add(time.Hour))}

	store := NewStore(repo, logger.GetInstance())
	if store.Ready() {
		t.Fatal("store ready before Restore")
	}
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !store.Ready() {
		t.Fatal("store not ready after Restore")
	}

	if sess, ok := store.Current(1); !ok || sess.TipoUsuario != api.RoleProfesor {
		t.Errorf("chat 1 not restored: %+v ok=%v", sess, ok)
	}
	if sess, ok := store.Current(5); !ok || sess.TipoUsuario != api.RoleEstudiante {
		t.Errorf("chat 5 not restored: %+v ok=%v", sess, ok)
	}
	for _, chatID := range []int64{2, 3, 4} {
		if _, ok := store.Current(chatID); ok {
			t.Errorf("chat %d restored, want dropped", chatID)
		}
		if _, exists := repo.rows[chatID]; exists {
			t.Errorf("chat %d row kept, want deleted", chatID)
		}
	}
}

func TestStoreRestoreStorageErrorStillReady(t *testing.T) {
	repo := newFakeRepo()
	repo.allErr = errors.New("db down")
	store := NewStore(repo, logger.GetInstance())

	if err := store.Restore(context.Background()); err == nil {
		t.Fatal("Restore did not surface storage error")
	}
	if !store.Ready() {
		t.Error("store stuck in loading after failed Restore")
	}
}

func TestTokenExpired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expired jwt", "", true},
		{"live jwt", "", false},
		{"opaque token", "not-a-jwt", false},
	}
	tests[0].token = signedToken(t, time.Now().Add(-time.Minute))
	tests[1].token = signedToken(t, time.Now().Add(time.Minute))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenExpired(tt.token); got != tt.want {
				t.Errorf("tokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
