package clients

import (
	"context"

	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	EndpointFollowers = "followers/list"
	EndpointFriends   = "friends/list"
)

// Getter запрашивает одну страницу списка пользователей.
type Getter interface {
	Get(ctx context.Context, endpoint string, params models.PageParams) (*models.Page, error)
}

// ProgressFunc вызывается после каждой полученной страницы.
type ProgressFunc func(endpoint string, nextCursor int64, fetched int)

type Fetcher struct {
	getter   Getter
	pageSize int
	progress ProgressFunc
}

type FetcherOption func(*Fetcher)

func WithProgress(progress ProgressFunc) FetcherOption {
	return func(f *Fetcher) {
		if progress != nil {
			f.progress = progress
		}
	}
}

func WithPageSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

func NewFetcher(getter Getter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		getter:   getter,
		pageSize: config.PageSize,
		progress: logProgress,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func logProgress(endpoint string, nextCursor int64, fetched int) {
	logrus.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"next_cursor": nextCursor,
		"fetched":     fetched,
	}).Debug("page fetched")
}

// FetchAll возвращает screen name всех пользователей эндпоинта в порядке ответов API.
func (f *Fetcher) FetchAll(ctx context.Context, endpoint string) ([]string, error) {
	users, err := f.FetchUsers(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return models.Handles(users), nil
}

// FetchUsers проходит по курсорам, пока API не вернет next_cursor = 0.
// При любой ошибке уже собранные страницы отбрасываются.
func (f *Fetcher) FetchUsers(ctx context.Context, endpoint string) ([]models.User, error) {
	users := make([]models.User, 0)
	cursor := config.InitialCursor
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "fetch %s", endpoint)
		}

		page, err := f.getter.Get(ctx, endpoint, models.PageParams{
			SkipStatus: true,
			Count:      f.pageSize,
			Cursor:     cursor,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch %s at cursor %d", endpoint, cursor)
		}
		if page == nil {
			return nil, &TransportError{Endpoint: endpoint, Err: errors.New("empty response")}
		}

		users = append(users, page.Users...)
		f.progress(endpoint, page.NextCursor, len(users))

		if page.NextCursor == 0 {
			return users, nil
		}
		cursor = page.NextCursor
	}
}
