package app

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZetoOfficial/follow-diff/internal/clients"
	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/export"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/ZetoOfficial/follow-diff/internal/reconcile"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Sink interface {
	SaveResult(ctx context.Context, owner string, result *models.Result) error
}

type Querier interface {
	RunQuery(ctx context.Context, queryName string) ([]map[string]interface{}, error)
}

type TwitterApi interface {
	clients.Getter
	Owner(ctx context.Context) (string, error)
}

type Options struct {
	Format      string
	OutputDir   string
	ProfilesOut string
}

type App struct {
	client  TwitterApi
	fetcher *clients.Fetcher
	sinks   []Sink
	out     io.Writer
	now     func() time.Time
}

func NewApp(api TwitterApi, sinks ...Sink) *App {
	return &App{
		client: api,
		fetcher: clients.NewFetcher(api, clients.WithProgress(func(endpoint string, nextCursor int64, fetched int) {
			logrus.WithFields(logrus.Fields{"endpoint": endpoint, "fetched": fetched}).Info(nextCursor)
		})),
		sinks: sinks,
		out:   os.Stdout,
		now:   time.Now,
	}
}

// CheckFormat пропускает только json. Формат html известен, но еще не реализован.
func CheckFormat(format string) error {
	switch format {
	case config.FormatJSON:
		return nil
	case config.FormatHTML:
		return export.ErrFormatNotImplemented
	default:
		return &config.ConfigError{Field: config.KeyFormat, Value: format, Reason: "must be json or html"}
	}
}

// Reconcile загружает фолловеров, затем друзей, сверяет списки и записывает результат.
// Пока оба списка не загружены полностью, ничего не записывается.
func (a *App) Reconcile(ctx context.Context, opts Options) (*models.Result, error) {
	if err := CheckFormat(opts.Format); err != nil {
		return nil, err
	}

	logrus.Info("Starting collect followers")
	followers, err := a.fetcher.FetchUsers(ctx, clients.EndpointFollowers)
	if err != nil {
		return nil, errors.Wrap(err, "collect followers")
	}
	logrus.Info("Starting collect friends")
	friends, err := a.fetcher.FetchUsers(ctx, clients.EndpointFriends)
	if err != nil {
		return nil, errors.Wrap(err, "collect friends")
	}

	result := reconcile.Reconcile(models.Handles(followers), models.Handles(friends))
	a.printSummary(result)

	var owner string
	if len(a.sinks) > 0 {
		owner, err = a.client.Owner(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "resolve owner")
		}
	}

	path, err := export.WriteResult(opts.OutputDir, result, a.now())
	if err != nil {
		return nil, errors.Wrap(err, "write result")
	}
	logrus.Infof("Result saved to %s", path)

	if opts.ProfilesOut != "" {
		if err := export.WriteProfiles(opts.ProfilesOut, export.Profiles{Followers: followers, Friends: friends}); err != nil {
			return nil, errors.Wrap(err, "write profiles")
		}
		logrus.Infof("Profiles saved to %s", opts.ProfilesOut)
	}

	for _, sink := range a.sinks {
		logrus.Info("Save result to storage")
		if err := sink.SaveResult(ctx, owner, result); err != nil {
			return nil, errors.Wrap(err, "save result")
		}
	}
	return result, nil
}

func (a *App) printSummary(result *models.Result) {
	heading := color.New(color.FgCyan, color.Bold)
	sections := []struct {
		name  string
		users []string
	}{
		{"followers", result.Followers},
		{"friends", result.Friends},
		{"followEachOther", result.Mutual},
		{"followedOnly", result.FollowersOnly},
		{"followOnly", result.FriendsOnly},
	}
	for i, s := range sections {
		if i > 0 {
			_, _ = io.WriteString(a.out, "===========================\n")
		}
		_, _ = heading.Fprintf(a.out, "%s count %d\n", s.name, len(s.users))
		_, _ = io.WriteString(a.out, s.name+" "+strings.Join(s.users, ",")+"\n")
	}
}

// RunQuery выполняет предопределенный запрос к хранилищу и логирует каждую строку.
func RunQuery(ctx context.Context, q Querier, query string) error {
	logrus.Infof("Run query: %s", query)
	results, err := q.RunQuery(ctx, query)
	if err != nil {
		return errors.Wrap(err, "run query")
	}
	for _, result := range results {
		logrus.Info(result)
	}
	return nil
}
