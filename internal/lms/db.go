package lms

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	role     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	type        INTEGER NOT NULL,
	filename    TEXT NOT NULL DEFAULT '',
	content     BLOB,
	timestamp   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS solutions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    INTEGER NOT NULL REFERENCES posts(id),
	student_id INTEGER NOT NULL REFERENCES users(id),
	filename   TEXT NOT NULL,
	content    BLOB,
	timestamp  INTEGER NOT NULL,
	grade      REAL,
	feedback   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS queries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id   INTEGER NOT NULL REFERENCES users(id),
	content      TEXT NOT NULL,
	timestamp    INTEGER NOT NULL,
	target       INTEGER NOT NULL,
	llm_response TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS replies (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id  INTEGER NOT NULL REFERENCES queries(id),
	user_id   INTEGER NOT NULL REFERENCES users(id),
	content   TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
`

const defaultAdminUsername = "admin"
const defaultAdminPassword = "admin123"

// DB wraps the node-local sqlite application database (spec.md §2.2,
// §6 "Application database is a separate file local to each node").
type DB struct {
	conn *sql.DB
}

func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("lms: open database: %w", err)
	}
	conn.SetMaxOpenConns(1) // sqlite3 driver is not safe for concurrent writers
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("lms: init schema: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.seedDefaultAdmin(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) seedDefaultAdmin() error {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, defaultAdminUsername).Scan(&count); err != nil {
		return fmt.Errorf("lms: check default admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("lms: hash default admin password: %w", err)
	}
	_, err = db.conn.Exec(`INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
		defaultAdminUsername, string(hash), lmspb.RoleAdmin)
	if err != nil {
		return fmt.Errorf("lms: seed default admin: %w", err)
	}
	return nil
}
