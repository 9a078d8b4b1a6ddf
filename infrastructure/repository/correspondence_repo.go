package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"annotator-go/domain/correspondence"
	"annotator-go/infrastructure/export"
)

// correspondenceDocument is the MongoDB document structure for an archived
// correspondence.
type correspondenceDocument struct {
	ID         string    `bson:"_id"`
	RunID      string    `bson:"run_id"`
	Seq        uint64    `bson:"seq"`
	Directory  string    `bson:"directory"`
	Frame1     int       `bson:"frame1"`
	X1         int       `bson:"x1"`
	Y1         int       `bson:"y1"`
	Frame2     int       `bson:"frame2"`
	X2         int       `bson:"x2"`
	Y2         int       `bson:"y2"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// MongoCorrespondenceRepository archives correspondences in MongoDB.
// It implements export.Sink.
type MongoCorrespondenceRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoCorrespondenceRepository creates a new MongoDB-based archive.
// An empty collection name uses the default.
func NewMongoCorrespondenceRepository(db *MongoDB, collection string, logger *slog.Logger) *MongoCorrespondenceRepository {
	if collection == "" {
		collection = DefaultMongoDBConfig().Collection
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoCorrespondenceRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// Name returns the sink name.
func (r *MongoCorrespondenceRepository) Name() string {
	return "mongodb"
}

// Write upserts the unsaved records of b. Records are keyed by run and
// sequence number, so writing the same record twice stores it once.
func (r *MongoCorrespondenceRepository) Write(ctx context.Context, b export.Batch) error {
	if len(b.Unsaved) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(b.Unsaved))
	for i, rec := range b.Unsaved {
		doc := recordToDocument(b.RunID, rec)
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true)
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to archive correspondences: %w", err)
	}

	r.logger.Debug("Correspondences archived",
		"run_id", b.RunID,
		"upserted", result.UpsertedCount,
		"modified", result.ModifiedCount)
	return nil
}

// EnsureIndexes creates the run/sequence index FindByRun reads through.
func (r *MongoCorrespondenceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetName("run_seq"),
	})
	if err != nil {
		return fmt.Errorf("failed to create archive indexes: %w", err)
	}
	return nil
}

// FindByRun returns the archived records of a run ordered by sequence number.
func (r *MongoCorrespondenceRepository) FindByRun(ctx context.Context, runID string) ([]correspondence.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"run_id": runID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find correspondences: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []correspondenceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode correspondences: %w", err)
	}

	records := make([]correspondence.Record, len(docs))
	for i := range docs {
		records[i] = documentToRecord(&docs[i])
	}
	return records, nil
}

// documentID is the archive key of a record.
func documentID(runID string, seq uint64) string {
	return fmt.Sprintf("%s:%d", runID, seq)
}

// recordToDocument converts a domain Record to a MongoDB document.
func recordToDocument(runID string, rec correspondence.Record) *correspondenceDocument {
	return &correspondenceDocument{
		ID:         documentID(runID, rec.Seq),
		RunID:      runID,
		Seq:        rec.Seq,
		Directory:  rec.Directory,
		Frame1:     rec.FrameA,
		X1:         rec.XA,
		Y1:         rec.YA,
		Frame2:     rec.FrameB,
		X2:         rec.XB,
		Y2:         rec.YB,
		RecordedAt: rec.RecordedAt.UTC(),
	}
}

// documentToRecord converts a MongoDB document to a domain Record.
func documentToRecord(doc *correspondenceDocument) correspondence.Record {
	return correspondence.Record{
		Seq:        doc.Seq,
		RecordedAt: doc.RecordedAt,
		Directory:  doc.Directory,
		Correspondence: correspondence.Correspondence{
			FrameA: doc.Frame1,
			XA:     doc.X1,
			YA:     doc.Y1,
			FrameB: doc.Frame2,
			XB:     doc.X2,
			YB:     doc.Y2,
		},
	}
}
