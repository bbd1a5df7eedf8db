package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// As migrações são embutidas no binário: o deploy não depende de
// arquivos .sql no filesystem.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica as migrações embutidas sobre uma conexão sql.DB.
type Migrator struct {
	mg *migrate.Migrate
}

func NewMigrator(db *sql.DB, dbName string) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Migrator{mg: mg}, nil
}

// Up aplica todas as migrações pendentes. Banco já atualizado não é erro.
func (m *Migrator) Up() error {
	err := m.mg.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Down desfaz a última migração. Só para desenvolvimento.
func (m *Migrator) Down() error {
	if err := m.mg.Steps(-1); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// Version retorna a versão atual e se o banco está dirty.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get version: %w", err)
	}
	return version, dirty, nil
}

// Force grava a versão sem executar migrações. Último recurso para
// destravar um banco dirty.
func (m *Migrator) Force(version int) error {
	if err := m.mg.Force(version); err != nil {
		return fmt.Errorf("force version: %w", err)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.mg.Close()
	if srcErr != nil {
		return fmt.Errorf("close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close database: %w", dbErr)
	}
	return nil
}
