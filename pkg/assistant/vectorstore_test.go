package assistant

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupVectorStore(t *testing.T, table string) (*VectorStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: mockDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), SkipDefaultTransaction: true},
	)
	require.NoError(t, err)

	vs, err := NewVectorStore(gormDB, table)
	require.NoError(t, err)
	return vs, mock
}

func TestSimilaritySearch(t *testing.T) {
	vs, mock := setupVectorStore(t, "")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, chunk_text, embedding <=> $1::vector AS distance`) + `\s+FROM knowledge_base\s+ORDER BY distance\s+LIMIT \$2`).
		WithArgs("[0.25,-1,0.5]", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chunk_text", "distance"}).
			AddRow(3, "Sprints last two weeks.", 0.12).
			AddRow(9, "Standups are at 9.", 0.34))

	chunks, err := vs.SimilaritySearch(context.Background(), []float32{0.25, -1, 0.5}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, Chunk{ID: 3, Text: "Sprints last two weeks.", Distance: 0.12}, chunks[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSimilaritySearch_Guards(t *testing.T) {
	vs, mock := setupVectorStore(t, "docs.chunks")

	_, err := vs.SimilaritySearch(context.Background(), nil, 5)
	assert.Error(t, err)

	chunks, err := vs.SimilaritySearch(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewVectorStore_RejectsBadTableName(t *testing.T) {
	for _, name := range []string{"kb; DROP TABLE users", "Knowledge", "a.b.c", "1kb"} {
		_, err := NewVectorStore(nil, name)
		assert.Error(t, err, name)
	}
}

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[]", vectorLiteral(nil))
	assert.Equal(t, "[0.1,2,-3.5]", vectorLiteral([]float32{0.1, 2, -3.5}))
}
