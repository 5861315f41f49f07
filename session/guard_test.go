package session

import (
	"context"
	"testing"

	"asistenciaBot/api"
	"asistenciaBot/database"
	"asistenciaBot/logger"
)

func restoredStore(t *testing.T, rows ...database.SessionRow) *Store {
	t.Helper()
	repo := newFakeRepo()
	for _, row := range rows {
		repo.rows[row.ChatID] = row
	}
	store := NewStore(repo, logger.GetInstance())
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return store
}

func TestGuardEvaluate(t *testing.T) {
	store := restoredStore(t,
		database.SessionRow{ChatID: 1, UsuarioID: 10, TipoUsuario: "ADMIN", Token: "tok-a"},
		database.SessionRow{ChatID: 2, UsuarioID: 11, TipoUsuario: "PROFESOR", Token: "tok-p"},
		database.SessionRow{ChatID: 3, UsuarioID: 12, TipoUsuario: "ESTUDIANTE", Token: "tok-e"},
	)
	guard := NewGuard(store)

	tests := []struct {
		name    string
		chatID  int64
		allowed []api.Role
		want    Decision
	}{
		{"admin on admin screen", 1, []api.Role{api.RoleAdmin}, DecisionAuthorized},
		{"profesor on admin screen", 2, []api.Role{api.RoleAdmin}, DecisionForbidden},
		{"profesor on shared screen", 2, []api.Role{api.RoleAdmin, api.RoleProfesor}, DecisionAuthorized},
		{"estudiante on shared screen", 3, []api.Role{api.RoleAdmin, api.RoleProfesor}, DecisionForbidden},
		{"any session passes empty role set", 3, nil, DecisionAuthorized},
		{"unknown chat", 99, []api.Role{api.RoleAdmin}, DecisionUnauthenticated},
		{"unknown chat with empty role set", 99, nil, DecisionUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guard.Evaluate(tt.chatID, tt.allowed...); got != tt.want {
				t.Errorf("Evaluate(%d, %v) = %v, want %v", tt.chatID, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestGuardLoadingBeforeRestore(t *testing.T) {
	store := NewStore(newFakeRepo(), logger.GetInstance())
	guard := NewGuard(store)

	if got := guard.Evaluate(1, api.RoleAdmin); got != DecisionLoading {
		t.Errorf("Evaluate before Restore = %v, want %v", got, DecisionLoading)
	}
}

func TestGuardRecomputesAfterLogout(t *testing.T) {
	store := restoredStore(t,
		database.SessionRow{ChatID: 1, UsuarioID: 10, TipoUsuario: "ADMIN", Token: "tok"},
	)
	guard := NewGuard(store)

	if got := guard.Evaluate(1, api.RoleAdmin); got != DecisionAuthorized {
		t.Fatalf("Evaluate before logout = %v", got)
	}
	if err := store.Logout(context.Background(), 1); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := guard.Evaluate(1, api.RoleAdmin); got != DecisionUnauthenticated {
		t.Errorf("Evaluate after logout = %v, want %v", got, DecisionUnauthenticated)
	}
}
