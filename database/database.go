package database

import (
	"database/sql"
	"fmt"
	"time"

	"cart-service/config"
	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func InitDB() error {
	cfg := config.LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return err
	}

	DB = db
	return ensureSchema()
}

// ensureSchema creates the audit tables consumed by the checkout consumer.
func ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submitted_orders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			total BIGINT NOT NULL,
			item_count INT NOT NULL,
			event_type VARCHAR(32) NOT NULL,
			occurred DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_submitted_orders_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS dead_letters (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func CloseDB() {
	if DB != nil {
		err := DB.Close()
		if err != nil {
			return
		}
	}
}
