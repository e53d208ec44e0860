package storage

import (
	"context"
	"time"

	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotsCollection = "snapshots"

type MongoStorage struct {
	client *mongo.Client
	dbName string
}

// Snapshot представляет один запуск сверки в MongoDB.
type Snapshot struct {
	Owner         string         `bson:"owner"`
	Date          time.Time      `bson:"date"`
	Followers     []string       `bson:"followers"`
	Friends       []string       `bson:"friends"`
	Mutual        []string       `bson:"mutual"`
	FollowersOnly []string       `bson:"followers_only"`
	FriendsOnly   []string       `bson:"friends_only"`
	Counts        map[string]int `bson:"counts"`
}

func NewSnapshot(owner string, result *models.Result, now time.Time) Snapshot {
	return Snapshot{
		Owner:         owner,
		Date:          now.UTC(),
		Followers:     result.Followers,
		Friends:       result.Friends,
		Mutual:        result.Mutual,
		FollowersOnly: result.FollowersOnly,
		FriendsOnly:   result.FriendsOnly,
		Counts:        result.Counts(),
	}
}

func NewMongoStorage(ctx context.Context, uri, dbName string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", uri)
	}
	return &MongoStorage{client: client, dbName: dbName}, nil
}

// snapshotInserter часть *mongo.Collection, которая нужна для сохранения снимка.
type snapshotInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

func (s *MongoStorage) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(snapshotsCollection)
}

func (s *MongoStorage) SaveResult(ctx context.Context, owner string, result *models.Result) error {
	return saveSnapshot(ctx, s.collection(), NewSnapshot(owner, result, time.Now()))
}

func saveSnapshot(ctx context.Context, inserter snapshotInserter, snapshot Snapshot) error {
	res, err := inserter.InsertOne(ctx, snapshot)
	if err != nil {
		return errors.Wrapf(err, "save snapshot for %s", snapshot.Owner)
	}
	logrus.Debugf("snapshot %v saved", res.InsertedID)
	return nil
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx, nil), "mongo ping")
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
