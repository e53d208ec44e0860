package clients

import (
	"context"
	_ "embed"
	"encoding/json"
	"strconv"

	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/pkg/errors"
)

//go:embed fixtures/stub.json
var stubFixture []byte

// StubClient отдает страницы из локальной фикстуры вместо Twitter API.
type StubClient struct {
	pages map[string]map[string]models.Page
}

func NewStubClient() (*StubClient, error) {
	return NewStubClientFromJSON(stubFixture)
}

// NewStubClientFromJSON разбирает фикстуру вида {endpoint: {cursor: page}}.
func NewStubClientFromJSON(data []byte) (*StubClient, error) {
	var pages map[string]map[string]models.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, errors.Wrap(err, "parse stub fixture")
	}
	return &StubClient{pages: pages}, nil
}

func (s *StubClient) Get(ctx context.Context, endpoint string, params models.PageParams) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	byCursor, ok := s.pages[endpoint]
	if !ok {
		return nil, &APIError{Endpoint: endpoint, Message: "unknown endpoint"}
	}
	page, ok := byCursor[strconv.FormatInt(params.Cursor, 10)]
	if !ok {
		return nil, &APIError{Endpoint: endpoint, Message: "unknown cursor " + strconv.FormatInt(params.Cursor, 10)}
	}
	return &page, nil
}

func (s *StubClient) Owner(context.Context) (string, error) {
	return config.StubOwner, nil
}
