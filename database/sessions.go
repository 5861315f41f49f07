package database

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRow is the persisted copy of a chat's authenticated identity plus
// its bearer token. Identity and token share one row so they are always
// written together and cleared together.
type SessionRow struct {
	ChatID        int64     `db:"chat_id"`
	UsuarioID     int64     `db:"usuario_id"`
	NombreUsuario string    `db:"nombre_usuario"`
	Email         string    `db:"email"`
	TipoUsuario   string    `db:"tipo_usuario"`
	Token         string    `db:"token"`
	SavedAt       time.Time `db:"saved_at"`
}

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Save(row SessionRow) error {
	_, err := r.db.Exec(`
        INSERT INTO sessions (chat_id, usuario_id, nombre_usuario, email, tipo_usuario, token, saved_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())
        ON CONFLICT (chat_id) DO UPDATE
        SET usuario_id = EXCLUDED.usuario_id,
            nombre_usuario = EXCLUDED.nombre_usuario,
            email = EXCLUDED.email,
            tipo_usuario = EXCLUDED.tipo_usuario,
            token = EXCLUDED.token,
            saved_at = now()`,
		row.ChatID, row.UsuarioID, row.NombreUsuario, row.Email, row.TipoUsuario, row.Token)
	return err
}

func (r *SessionRepository) All() ([]SessionRow, error) {
	var rows []SessionRow
	err := r.db.Select(&rows, `SELECT * FROM sessions ORDER BY chat_id`)
	return rows, err
}

// Delete is idempotent: removing an absent row is not an error.
func (r *SessionRepository) Delete(chatID int64) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE chat_id = $1`, chatID)
	return err
}
