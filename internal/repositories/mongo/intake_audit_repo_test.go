package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/visadesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestIntakeAuditRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert sets created_at", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewIntakeAuditRepo(mt.DB)

		a := &models.IntakeAudit{HolderID: 3, Outcome: models.IntakeSucceeded, FileCount: 1, Uploaded: 1}
		require.NoError(mt, repo.Insert(context.Background(), a))
		assert.False(mt, a.CreatedAt.IsZero())
	})

	mt.Run("list by holder decodes documents", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + IntakeAuditCollection
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "holder_id", Value: int64(3)},
					{Key: "outcome", Value: "partial"},
					{Key: "file_count", Value: 2},
					{Key: "uploaded", Value: 1},
					{Key: "skipped_files", Value: bson.A{"bad.jpg"}},
					{Key: "created_at", Value: created},
				},
			),
		)
		repo := NewIntakeAuditRepo(mt.DB)

		rows, err := repo.ListByHolder(context.Background(), 3, 0)
		require.NoError(mt, err)
		require.Len(mt, rows, 1)
		assert.Equal(mt, models.IntakePartial, rows[0].Outcome)
		assert.Equal(mt, []string{"bad.jpg"}, rows[0].SkippedFiles)
		assert.True(mt, created.Equal(rows[0].CreatedAt))
	})
}
