package audit

import (
	"context"
	"time"

	"go-workforce/internal/shared/contextutil"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const Collection = "audit_events"

type document struct {
	ID         bson.ObjectID  `bson:"_id"`
	Action     string         `bson:"action"`
	Message    string         `bson:"message"`
	ActorID    string         `bson:"actor_id,omitempty"`
	EntityType string         `bson:"entity_type,omitempty"`
	EntityID   string         `bson:"entity_id,omitempty"`
	RequestID  string         `bson:"request_id,omitempty"`
	Meta       map[string]any `bson:"meta,omitempty"`
	OccurredAt time.Time      `bson:"occurred_at"`
}

// MongoLogger appends entries to the audit_events collection. Write failures
// are logged and swallowed.
type MongoLogger struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoLogger(db *mongo.Database, logger ...*zap.Logger) *MongoLogger {
	l := zap.L().Named("audit.mongo")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.mongo")
	}
	return &MongoLogger{coll: db.Collection(Collection), logger: l}
}

// EnsureIndexes creates the lookup indexes used by audit queries.
func (m *MongoLogger) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}

func (m *MongoLogger) Log(ctx context.Context, entry Entry) {
	doc := toDocument(ctx, entry)

	// detached from request cancellation
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := m.coll.InsertOne(writeCtx, doc); err != nil {
		m.logger.Error("audit insert failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}

func toDocument(ctx context.Context, entry Entry) document {
	entry = stamp(entry)
	return document{
		ID:         bson.NewObjectID(),
		Action:     entry.Action,
		Message:    entry.Message,
		ActorID:    entry.ActorID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		RequestID:  contextutil.GetRequestID(ctx),
		Meta:       entry.Meta,
		OccurredAt: entry.OccurredAt,
	}
}
