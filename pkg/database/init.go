package database

import (
	"fmt"

	"github.com/99-jordan/yarro-maintenance-triage/config"
)

// InitializeDatabases creates the application database if it does not exist.
// Connects to the maintenance database, so the configured role needs
// CREATEDB.
func InitializeDatabases(cfg *config.Config) error {
	adminCfg := cfg.Database
	target := adminCfg.DBName
	adminCfg.DBName = "postgres"

	db, err := NewGormFromCentral(adminCfg)
	if err != nil {
		return fmt.Errorf("connect maintenance db: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", target).Scan(&count).Error; err != nil {
		return fmt.Errorf("check database %q: %w", target, err)
	}
	if count > 0 {
		return nil
	}

	// CREATE DATABASE cannot be parameterized; the name comes from config,
	// not user input.
	if err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", target)).Error; err != nil {
		return fmt.Errorf("create database %q: %w", target, err)
	}
	return nil
}
