package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/railmitra/railmitra/vector"
)

// PGVectorStore implements vector.Store using PostgreSQL with the pgvector extension
type PGVectorStore struct {
	db        *sql.DB
	dimension int
	tableName string
}

// PGVectorConfig holds pgvector configuration
type PGVectorConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int    // Embedding dimension (default: 1536)
	TableName string // Table name (default: passages)
}

// DefaultPGVectorConfig returns default pgvector configuration
func DefaultPGVectorConfig() *PGVectorConfig {
	return &PGVectorConfig{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		Password:  "postgres",
		DBName:    "railmitra",
		SSLMode:   "disable",
		Dimension: 1536,
		TableName: "passages",
	}
}

// NewPGVectorStore creates a new pgvector-based vector store
func NewPGVectorStore(config *PGVectorConfig) (*PGVectorStore, error) {
	if config == nil {
		config = DefaultPGVectorConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PGVectorStore{
		db:        db,
		dimension: config.Dimension,
		tableName: config.TableName,
	}

	if err := store.setup(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to setup pgvector: %w", err)
	}
	return store, nil
}

func (s *PGVectorStore) setup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(255) PRIMARY KEY,
		meta JSONB NOT NULL,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.tableName, s.dimension)

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Add inserts a record into the store
func (s *PGVectorStore) Add(ctx context.Context, rec *vector.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}
	if len(rec.Vector) != s.dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(rec.Vector))
	}

	meta, err := json.Marshal(rec.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (id, meta, embedding)
	VALUES ($1, $2, $3::vector)
	ON CONFLICT (id) DO UPDATE SET
		meta = EXCLUDED.meta,
		embedding = EXCLUDED.embedding,
		created_at = CURRENT_TIMESTAMP
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, rec.ID, meta, vectorToString(rec.Vector)); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Search finds records similar to the query vector using cosine distance
func (s *PGVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]vector.Match, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if topK <= 0 {
		topK = 10
	}

	query := fmt.Sprintf(`
	SELECT id, meta, 1 - (embedding %s $1::vector) AS similarity
	FROM %s
	ORDER BY embedding %s $1::vector
	LIMIT $2
	`, vector.CosineSimilarityOperator(), s.tableName, vector.CosineSimilarityOperator())

	rows, err := s.db.QueryContext(ctx, query, vectorToString(queryVector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var matches []vector.Match
	for rows.Next() {
		var (
			m       vector.Match
			rawMeta []byte
		)
		if err := rows.Scan(&m.ID, &rawMeta, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal(rawMeta, &m.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Count returns the number of stored records
func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Clear removes all records
func (s *PGVectorStore) Clear(ctx context.Context) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s", s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *PGVectorStore) Close() error {
	return s.db.Close()
}

// vectorToString converts a vector to pgvector text format: [1,2,3]
func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
