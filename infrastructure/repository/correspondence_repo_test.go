package repository

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"annotator-go/core/event"
	"annotator-go/domain/correspondence"
	"annotator-go/infrastructure/export"
)

func mockRepo(mt *mtest.T) *MongoCorrespondenceRepository {
	db := &MongoDB{client: mt.Client, database: mt.DB}
	return NewMongoCorrespondenceRepository(db, mt.Coll.Name(), nil)
}

func archived(runID string, seq uint64, dir string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: documentID(runID, seq)},
		{Key: "run_id", Value: runID},
		{Key: "seq", Value: int64(seq)},
		{Key: "directory", Value: dir},
		{Key: "frame1", Value: 1},
		{Key: "x1", Value: int(seq) * 10},
		{Key: "y1", Value: 5},
		{Key: "frame2", Value: 2},
		{Key: "x2", Value: int(seq) * 10},
		{Key: "y2", Value: 6},
		{Key: "recorded_at", Value: primitive.NewDateTimeFromTime(at)},
	}
}

func TestMongoCorrespondenceRepository_FindByRun(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("returns records in cursor order", func(mt *mtest.T) {
		repo := mockRepo(mt)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			archived("run-1", 1, "/dirA", at),
			archived("run-1", 2, "/dirB", at.Add(time.Second)),
		))

		records, err := repo.FindByRun(context.Background(), "run-1")
		if err != nil {
			mt.Fatalf("FindByRun() error = %v", err)
		}
		if len(records) != 2 {
			mt.Fatalf("FindByRun() returned %d records, want 2", len(records))
		}

		want := []struct {
			seq uint64
			dir string
			xa  int
		}{
			{1, "/dirA", 10},
			{2, "/dirB", 20},
		}
		for i, w := range want {
			got := records[i]
			if got.Seq != w.seq || got.Directory != w.dir || got.XA != w.xa {
				mt.Errorf("records[%d] = seq %d dir %q xa %d, want seq %d dir %q xa %d",
					i, got.Seq, got.Directory, got.XA, w.seq, w.dir, w.xa)
			}
			if got.FrameA != 1 || got.FrameB != 2 || got.YA != 5 || got.YB != 6 {
				mt.Errorf("records[%d] correspondence = %+v", i, got.Correspondence)
			}
		}
		if !records[0].RecordedAt.Equal(at) {
			mt.Errorf("RecordedAt = %v, want %v", records[0].RecordedAt, at)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "find" {
			mt.Fatalf("started event = %v, want find", started)
		}
		if got := started.Command.Lookup("filter", "run_id").StringValue(); got != "run-1" {
			mt.Errorf("find filter run_id = %q, want run-1", got)
		}
		if got := started.Command.Lookup("sort", "seq").AsInt64(); got != 1 {
			mt.Errorf("find sort seq = %d, want 1", got)
		}
	})

	mt.Run("empty run", func(mt *mtest.T) {
		repo := mockRepo(mt)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		records, err := repo.FindByRun(context.Background(), "none")
		if err != nil {
			mt.Fatalf("FindByRun() error = %v", err)
		}
		if len(records) != 0 {
			mt.Errorf("FindByRun() = %v, want empty", records)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := mockRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		if _, err := repo.FindByRun(context.Background(), "run-1"); err == nil {
			mt.Error("FindByRun() expected error")
		}
	})
}

func TestMongoCorrespondenceRepository_Write(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	batch := func() export.Batch {
		l := correspondence.NewLedger()
		l.Append("/dirA", correspondence.Correspondence{FrameA: 1, XA: 1, YA: 1, FrameB: 2, XB: 2, YB: 2})
		l.Append("/dirB", correspondence.Correspondence{FrameA: 3, XA: 3, YA: 3, FrameB: 4, XB: 4, YB: 4})
		recs := l.History()
		for i := range recs {
			recs[i].RecordedAt = at
		}
		return export.Batch{RunID: "run-1", Trigger: event.TriggerManual, History: recs, Unsaved: recs}
	}

	mt.Run("upserts each unsaved record", func(mt *mtest.T) {
		repo := mockRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
		))

		if err := repo.Write(context.Background(), batch()); err != nil {
			mt.Fatalf("Write() error = %v", err)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "update" {
			mt.Fatalf("started event = %v, want update", started)
		}
		updates, err := started.Command.Lookup("updates").Array().Values()
		if err != nil {
			mt.Fatalf("updates array: %v", err)
		}
		if len(updates) != 2 {
			mt.Fatalf("update statements = %d, want 2", len(updates))
		}
		first := updates[0].Document()
		if got := first.Lookup("q", "_id").StringValue(); got != "run-1:1" {
			mt.Errorf("first filter _id = %q, want run-1:1", got)
		}
		if got := first.Lookup("u", "directory").StringValue(); got != "/dirA" {
			mt.Errorf("first directory = %q, want /dirA", got)
		}
		if !first.Lookup("upsert").Boolean() {
			mt.Error("first statement is not an upsert")
		}
		second := updates[1].Document()
		if got := second.Lookup("u", "directory").StringValue(); got != "/dirB" {
			mt.Errorf("second directory = %q, want /dirB", got)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := mockRepo(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key",
		}))

		if err := repo.Write(context.Background(), batch()); err == nil {
			mt.Error("Write() expected error")
		}
	})
}

func TestMongoCorrespondenceRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates run_seq index", func(mt *mtest.T) {
		repo := mockRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("EnsureIndexes() error = %v", err)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "createIndexes" {
			mt.Fatalf("started event = %v, want createIndexes", started)
		}
		index := started.Command.Lookup("indexes").Array().Index(0).Value().Document()
		if got := index.Lookup("name").StringValue(); got != "run_seq" {
			mt.Errorf("index name = %q, want run_seq", got)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := mockRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		if err := repo.EnsureIndexes(context.Background()); err == nil {
			mt.Error("EnsureIndexes() expected error")
		}
	})
}
