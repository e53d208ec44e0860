package storage

import (
	"context"
	"fmt"

	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Neo4jStorage struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jStorage(uri, username, password string) (*Neo4jStorage, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "connect to driver")
	}
	return &Neo4jStorage{Driver: driver}, nil
}

func (s *Neo4jStorage) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

// cypherRunner часть neo4j.SessionWithContext, которая нужна для записи графа.
type cypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error)
}

// SaveResult сохраняет граф подписок владельца: фолловер -[:FOLLOWS]-> владелец -[:FOLLOWS]-> друг.
func (s *Neo4jStorage) SaveResult(ctx context.Context, owner string, result *models.Result) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func(session neo4j.SessionWithContext, ctx context.Context) {
		err := session.Close(ctx)
		if err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}(session, ctx)

	return saveGraph(ctx, session, owner, result)
}

// saveGraph останавливается на первой ошибке записи.
func saveGraph(ctx context.Context, runner cypherRunner, owner string, result *models.Result) error {
	if err := mergeUser(ctx, runner, owner); err != nil {
		return err
	}
	for _, follower := range result.Followers {
		if err := mergeFollows(ctx, runner, follower, owner); err != nil {
			return err
		}
	}
	for _, friend := range result.Friends {
		if err := mergeFollows(ctx, runner, owner, friend); err != nil {
			return err
		}
	}
	return nil
}

func mergeUser(ctx context.Context, runner cypherRunner, screenName string) error {
	_, err := runner.Run(ctx, mergeUserQuery, map[string]any{"screen_name": screenName})
	if err != nil {
		logrus.Errorf("save user %s: %v", screenName, err)
		return errors.Wrapf(err, "save user %s", screenName)
	}
	return nil
}

func mergeFollows(ctx context.Context, runner cypherRunner, from, to string) error {
	_, err := runner.Run(ctx, mergeFollowsQuery, map[string]any{
		"from": from,
		"to":   to,
	})
	if err != nil {
		logrus.Errorf("save relationship %s -> %s: %v", from, to, err)
		return errors.Wrapf(err, "save relationship %s -> %s", from, to)
	}
	return nil
}

func (s *Neo4jStorage) RunQuery(ctx context.Context, queryName string) ([]map[string]interface{}, error) {
	query, exists := neo4jQueries[queryName]
	if !exists {
		return nil, fmt.Errorf("query %s not found", queryName)
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func(session neo4j.SessionWithContext, ctx context.Context) {
		err := session.Close(ctx)
		if err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}(session, ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		recordMap := make(map[string]interface{})
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			recordMap[key] = value
		}
		results = append(results, recordMap)
	}

	if err = result.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Neo4jStorage) Ping(ctx context.Context) error {
	if err := s.Driver.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(err, "neo4j connectivity")
	}
	return nil
}
