package config

import (
	"context"
	"errors"
	"time"

	mongorepo "github.com/yoockh/visadesk/internal/repositories/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// auditIndexes returns the intake_audit indexes. A zero ttl disables expiry.
func auditIndexes(ttl time.Duration) []mongo.IndexModel {
	idx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "holder_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_holder_created"),
		},
	}
	if ttl > 0 {
		idx = append(idx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_created_at").
				SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
	}
	return idx
}

func EnsureMongoIndexes(dbName string, ttl time.Duration) error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	col := MongoClient.Database(dbName).Collection(mongorepo.IntakeAuditCollection)
	_, err := col.Indexes().CreateMany(ctx, auditIndexes(ttl))
	return err
}
