package database

import (
	"github.com/jmoiron/sqlx"

	"asistenciaBot/config"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    chat_id        BIGINT PRIMARY KEY,
    usuario_id     BIGINT NOT NULL,
    nombre_usuario TEXT   NOT NULL,
    email          TEXT   NOT NULL,
    tipo_usuario   TEXT   NOT NULL,
    token          TEXT   NOT NULL,
    saved_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func OpenDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URI)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(sessionsSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
