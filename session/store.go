// Package session owns "who is logged in" for every chat. The store is the
// only cross-screen shared mutable state in the process; it is mutated only
// by Login, Logout, Restore and the gateway's forced-logout path.
package session

import (
	"context"
	"sync"

	"asistenciaBot/api"
	"asistenciaBot/database"
	"asistenciaBot/logger"
)

// Session is the authenticated identity of one chat.
type Session struct {
	UsuarioID     int64
	NombreUsuario string
	Email         string
	TipoUsuario   api.Role
}

// LoginAPI is the slice of the gateway the store needs.
type LoginAPI interface {
	Login(ctx context.Context, chatID int64, creds api.Credentials) (api.LoginResponse, error)
}

// Repository is the persistence the store needs; database.SessionRepository
// is the production implementation.
type Repository interface {
	Save(row database.SessionRow) error
	All() ([]database.SessionRow, error)
	Delete(chatID int64) error
}

type entry struct {
	session Session
	token   string
}

type Store struct {
	auth   LoginAPI
	repo   Repository
	logger *logger.Logger

	mu       sync.RWMutex
	sessions map[int64]entry
	restored bool
}

func NewStore(repo Repository, log *logger.Logger) *Store {
	return &Store{
		repo:     repo,
		logger:   log,
		sessions: make(map[int64]entry),
	}
}

// SetAuth wires the login gateway. Set once during application
// configuration; the gateway itself needs the store as its token source, so
// neither can receive the other at construction.
func (s *Store) SetAuth(auth LoginAPI) {
	s.auth = auth
}

// Login authenticates the chat. The row is persisted before the in-memory
// copy is adopted, so a storage failure never leaves the two halves apart.
func (s *Store) Login(ctx context.Context, chatID int64, creds api.Credentials) (Session, error) {
	resp, err := s.auth.Login(ctx, chatID, creds)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		UsuarioID:     resp.ID,
		NombreUsuario: resp.NombreUsuario,
		Email:         resp.Email,
		TipoUsuario:   resp.TipoUsuario,
	}

	row := database.SessionRow{
		ChatID:        chatID,
		UsuarioID:     sess.UsuarioID,
		NombreUsuario: sess.NombreUsuario,
		Email:         sess.Email,
		TipoUsuario:   string(sess.TipoUsuario),
		Token:         resp.Token,
	}
	if err := s.repo.Save(row); err != nil {
		s.logger.Errorf("Failed to persist session for chat %d: %v", chatID, err)
		return Session{}, err
	}

	s.mu.Lock()
	s.sessions[chatID] = entry{session: sess, token: resp.Token}
	s.mu.Unlock()

	s.logger.Infof("Chat %d logged in as %s (%s)", chatID, sess.NombreUsuario, sess.TipoUsuario)
	return sess, nil
}

// Logout clears the persisted and in-memory identity unconditionally. It is
// idempotent and makes no network call.
func (s *Store) Logout(ctx context.Context, chatID int64) error {
	if err := s.repo.Delete(chatID); err != nil {
		s.logger.Errorf("Failed to delete persisted session for chat %d: %v", chatID, err)
		return err
	}

	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return nil
}

// Invalidate is the gateway's forced-logout path. Same teardown as Logout.
func (s *Store) Invalidate(ctx context.Context, chatID int64) {
	if err := s.Logout(ctx, chatID); err != nil {
		// Memory was not cleared above; drop it anyway so the chat cannot
		// keep using a rejected token.
		s.mu.Lock()
		delete(s.sessions, chatID)
		s.mu.Unlock()
	}
}

// Restore loads every persisted session at startup without asking the
// server. Rows whose JWT is already past exp are dropped here instead of
// bouncing on their first request; anything else is trusted until a call
// fails.
func (s *Store) Restore(ctx context.Context) error {
	rows, err := s.repo.All()
	if err != nil {
		s.mu.Lock()
		s.restored = true
		s.mu.Unlock()
		return err
	}

	adopted := 0
	for _, row := range rows {
		role := api.Role(row.TipoUsuario)
		if row.Token == "" || !role.Valid() {
			s.logger.Warnf("Skipping malformed persisted session for chat %d", row.ChatID)
			_ = s.repo.Delete(row.ChatID)
			continue
		}
		if tokenExpired(row.Token) {
			s.logger.Infof("Dropping expired session for chat %d", row.ChatID)
			_ = s.repo.Delete(row.ChatID)
			continue
		}

		s.mu.Lock()
		s.sessions[row.ChatID] = entry{
			session: Session{
				UsuarioID:     row.UsuarioID,
				NombreUsuario: row.NombreUsuario,
				Email:         row.Email,
				TipoUsuario:   role,
			},
			token: row.Token,
		}
		s.mu.Unlock()
		adopted++
	}

	s.mu.Lock()
	s.restored = true
	s.mu.Unlock()

	s.logger.Infof("Restored %d persisted session(s)", adopted)
	return nil
}

// Current returns the chat's session, if any.
func (s *Store) Current(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[chatID]
	return e.session, ok
}

// Token implements api.TokenSource.
func (s *Store) Token(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[chatID].token
}

// Ready reports whether Restore has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restored
}
