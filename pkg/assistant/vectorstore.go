package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultKnowledgeBaseTable holds the embedded project documents
const DefaultKnowledgeBaseTable = "knowledge_base"

var tableNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// Chunk is a knowledge base passage returned by a similarity search
type Chunk struct {
	ID       int64   `gorm:"column:id" json:"id"`
	Text     string  `gorm:"column:chunk_text" json:"text"`
	Distance float64 `gorm:"column:distance" json:"distance"`
}

// VectorStore searches the pgvector knowledge base table
type VectorStore struct {
	db    *gorm.DB
	table string
}

// NewVectorStore creates a VectorStore over table
func NewVectorStore(db *gorm.DB, table string) (*VectorStore, error) {
	if table == "" {
		table = DefaultKnowledgeBaseTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid knowledge base table name %q", table)
	}
	return &VectorStore{db: db, table: table}, nil
}

// SimilaritySearch returns the k chunks closest to embedding by cosine distance
func (s *VectorStore) SimilaritySearch(ctx context.Context, embedding []float32, k int) ([]Chunk, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	if k <= 0 {
		return []Chunk{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, chunk_text, embedding <=> ?::vector AS distance
		FROM %s
		ORDER BY distance
		LIMIT ?
	`, s.table)

	chunks := []Chunk{}
	if err := s.db.WithContext(ctx).Raw(query, vectorLiteral(embedding), k).Scan(&chunks).Error; err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return chunks, nil
}

// vectorLiteral formats an embedding in pgvector's text representation
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
