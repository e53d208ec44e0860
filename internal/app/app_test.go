package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZetoOfficial/follow-diff/internal/clients"
	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/export"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApi struct {
	pages    map[string][]*models.Page
	failOn   string
	calls    []string
	ownerErr error
}

func (f *fakeApi) Get(_ context.Context, endpoint string, params models.PageParams) (*models.Page, error) {
	f.calls = append(f.calls, endpoint)
	if endpoint == f.failOn {
		return nil, &clients.TransportError{Endpoint: endpoint, Err: errors.New("connection reset")}
	}
	idx := 0
	if params.Cursor > 0 {
		idx = int(params.Cursor)
	}
	return f.pages[endpoint][idx], nil
}

func (f *fakeApi) Owner(context.Context) (string, error) {
	return "me", f.ownerErr
}

type fakeSink struct {
	owner  string
	result *models.Result
}

func (s *fakeSink) SaveResult(_ context.Context, owner string, result *models.Result) error {
	s.owner = owner
	s.result = result
	return nil
}

func newFakeApi() *fakeApi {
	return &fakeApi{pages: map[string][]*models.Page{
		clients.EndpointFollowers: {
			{Users: []models.User{{ScreenName: "a", ProfileImageURL: "http://img/a.jpg"}, {ScreenName: "b"}}, NextCursor: 1},
			{Users: []models.User{{ScreenName: "c"}}, NextCursor: 0},
		},
		clients.EndpointFriends: {
			{Users: []models.User{{ScreenName: "c"}, {ScreenName: "d"}, {ScreenName: "a"}}, NextCursor: 0},
		},
	}}
}

func newTestApp(api TwitterApi, sinks ...Sink) (*App, *bytes.Buffer) {
	a := NewApp(api, sinks...)
	out := &bytes.Buffer{}
	a.out = out
	a.now = func() time.Time { return time.Date(2024, time.March, 7, 12, 0, 0, 0, time.Local) }
	return a, out
}

func TestReconcileWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	profilesPath := filepath.Join(dir, "profiles.json")
	api := newFakeApi()
	sink := &fakeSink{}
	a, out := newTestApp(api, sink)

	result, err := a.Reconcile(context.Background(), Options{
		Format:      config.FormatJSON,
		OutputDir:   dir,
		ProfilesOut: profilesPath,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, result.Mutual)
	assert.Equal(t, []string{"b"}, result.FollowersOnly)
	assert.Equal(t, []string{"d"}, result.FriendsOnly)
	assert.Equal(t, []string{
		clients.EndpointFollowers, clients.EndpointFollowers, clients.EndpointFriends,
	}, api.calls)

	_, err = os.Stat(filepath.Join(dir, "output-2024-03-07.json"))
	assert.NoError(t, err)

	profiles, err := export.ReadProfiles(profilesPath)
	require.NoError(t, err)
	assert.Len(t, profiles.Followers, 3)
	assert.Equal(t, "http://img/a.jpg", profiles.Followers[0].ProfileImageURL)

	assert.Equal(t, "me", sink.owner)
	assert.Same(t, result, sink.result)

	assert.Contains(t, out.String(), "followEachOther count 2")
	assert.Contains(t, out.String(), "followOnly d")
}

func TestReconcileHTMLNotImplemented(t *testing.T) {
	api := newFakeApi()
	a, _ := newTestApp(api)

	_, err := a.Reconcile(context.Background(), Options{Format: config.FormatHTML, OutputDir: t.TempDir()})

	assert.ErrorIs(t, err, export.ErrFormatNotImplemented)
	assert.Empty(t, api.calls)
}

func TestReconcileInvalidFormat(t *testing.T) {
	api := newFakeApi()
	a, _ := newTestApp(api)

	_, err := a.Reconcile(context.Background(), Options{Format: "xml", OutputDir: t.TempDir()})

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "xml", cfgErr.Value)
	assert.Empty(t, api.calls)
}

func TestReconcileFetchErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	api := newFakeApi()
	api.failOn = clients.EndpointFriends
	sink := &fakeSink{}
	a, _ := newTestApp(api, sink)

	_, err := a.Reconcile(context.Background(), Options{
		Format:      config.FormatJSON,
		OutputDir:   dir,
		ProfilesOut: filepath.Join(dir, "profiles.json"),
	})

	var transportErr *clients.TransportError
	require.ErrorAs(t, err, &transportErr)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Nil(t, sink.result)
}

func TestReconcileOwnerErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	api := newFakeApi()
	api.ownerErr = errors.New("owner lookup failed")
	a, _ := newTestApp(api, &fakeSink{})

	_, err := a.Reconcile(context.Background(), Options{Format: config.FormatJSON, OutputDir: dir})

	assert.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeQuerier struct {
	name string
}

func (q *fakeQuerier) RunQuery(_ context.Context, name string) ([]map[string]interface{}, error) {
	q.name = name
	if name == "broken" {
		return nil, errors.New("syntax error")
	}
	return []map[string]interface{}{{"total_users": int64(3)}}, nil
}

func TestRunQuery(t *testing.T) {
	q := &fakeQuerier{}

	require.NoError(t, RunQuery(context.Background(), q, "total_users"))
	assert.Equal(t, "total_users", q.name)
	assert.Error(t, RunQuery(context.Background(), q, "broken"))
}
