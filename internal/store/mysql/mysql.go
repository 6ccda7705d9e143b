// Package mysql implementa los repositorios sobre MySQL (database/sql).
//
// El driver concreto lo registra el binario que abre la conexión; los repos
// solo dependen de *sql.DB, lo que permite testearlos con sqlmock.
package mysql

import (
	"database/sql"
	"time"
)

// Store agrupa la conexión y expone los repositorios.
type Store struct{ db *sql.DB }

// New crea el Store sobre una conexión ya abierta.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open abre la conexión con tuning razonable y la verifica.
func Open(driverName, dsn string) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close cierra la conexión.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
