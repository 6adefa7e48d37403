package mongo

import (
	"context"
	"time"

	"github.com/yoockh/visadesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const IntakeAuditCollection = "intake_audit"

type IntakeAuditRepository interface {
	Insert(ctx context.Context, a *models.IntakeAudit) error
	ListByHolder(ctx context.Context, holderID int64, limit int64) ([]models.IntakeAudit, error)
}

type intakeAuditRepo struct {
	col *mongo.Collection
}

func NewIntakeAuditRepo(db *mongo.Database) IntakeAuditRepository {
	return &intakeAuditRepo{col: db.Collection(IntakeAuditCollection)}
}

func (r *intakeAuditRepo) Insert(ctx context.Context, a *models.IntakeAudit) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *intakeAuditRepo) ListByHolder(ctx context.Context, holderID int64, limit int64) ([]models.IntakeAudit, error) {
	if limit <= 0 {
		limit = 20
	}
	cur, err := r.col.Find(ctx,
		bson.M{"holder_id": holderID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.IntakeAudit
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
