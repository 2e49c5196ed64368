package db

import (
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DB is the global database connection.
var DB *sqlx.DB

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("record conflicts with an existing row")
)

// InitDB initializes the database connection.
func InitDB(dbURL string) {
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var err error
	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Database connection established")
}

// Store runs the application queries against a connection.
type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
