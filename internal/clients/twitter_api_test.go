package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = config.Credentials{
	AccessTokenKey:    "access-key",
	AccessTokenSecret: "access-secret",
	ConsumerKey:       "consumer-key",
	ConsumerSecret:    "consumer-secret",
}

type fakeTwitter struct {
	server  *httptest.Server
	queries []map[string]string
	auth    []string
}

func newFakeTwitter(t *testing.T, pages map[string]models.Page) *fakeTwitter {
	gin.SetMode(gin.TestMode)
	fake := &fakeTwitter{}
	router := gin.New()
	router.GET("/1.1/followers/list.json", func(c *gin.Context) {
		fake.auth = append(fake.auth, c.GetHeader("Authorization"))
		fake.queries = append(fake.queries, map[string]string{
			"cursor":      c.Query("cursor"),
			"count":       c.Query("count"),
			"skip_status": c.Query("skip_status"),
		})
		p, ok := pages[c.Query("cursor")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"errors": []gin.H{{"code": 34, "message": "Sorry, that page does not exist."}}})
			return
		}
		c.JSON(http.StatusOK, p)
	})
	router.GET("/1.1/friends/list.json", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": []gin.H{{"code": 32, "message": "Could not authenticate you."}}})
	})
	router.GET("/1.1/account/verify_credentials.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"screen_name": "owner", "id": 42})
	})
	router.GET("/1.1/broken/list.json", func(c *gin.Context) {
		c.String(http.StatusOK, "{not json")
	})
	fake.server = httptest.NewServer(router)
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeTwitter) client() *TwitterClient {
	tw := NewTwitterClient(testCreds)
	tw.BaseURL = f.server.URL + "/1.1/"
	return tw
}

func TestTwitterClientPaginates(t *testing.T) {
	fake := newFakeTwitter(t, map[string]models.Page{
		"-1": {Users: []models.User{{ScreenName: "a", ProfileImageURL: "http://img/a.jpg"}}, NextCursor: 11},
		"11": {Users: []models.User{{ScreenName: "b"}}, NextCursor: 0},
	})

	users, err := NewFetcher(fake.client()).FetchUsers(context.Background(), EndpointFollowers)

	require.NoError(t, err)
	assert.Equal(t, []models.User{
		{ScreenName: "a", ProfileImageURL: "http://img/a.jpg"},
		{ScreenName: "b"},
	}, users)
	assert.Equal(t, []map[string]string{
		{"cursor": "-1", "count": "200", "skip_status": "true"},
		{"cursor": "11", "count": "200", "skip_status": "true"},
	}, fake.queries)
	for _, auth := range fake.auth {
		assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
		assert.Contains(t, auth, `oauth_consumer_key="consumer-key"`)
		assert.Contains(t, auth, `oauth_token="access-key"`)
		assert.Contains(t, auth, "oauth_signature=")
	}
}

func TestTwitterClientAPIError(t *testing.T) {
	fake := newFakeTwitter(t, nil)

	_, err := fake.client().Get(context.Background(), EndpointFriends, models.PageParams{Count: 200, Cursor: -1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 32, apiErr.Code)
	assert.Equal(t, "Could not authenticate you.", apiErr.Message)
}

func TestTwitterClientDecodeError(t *testing.T) {
	fake := newFakeTwitter(t, nil)

	_, err := fake.client().Get(context.Background(), "broken/list", models.PageParams{Cursor: -1})

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestTwitterClientTransportError(t *testing.T) {
	fake := newFakeTwitter(t, nil)
	tw := fake.client()
	fake.server.Close()

	_, err := tw.Get(context.Background(), EndpointFollowers, models.PageParams{Cursor: -1})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, EndpointFollowers, transportErr.Endpoint)
}

func TestTwitterClientOwner(t *testing.T) {
	fake := newFakeTwitter(t, nil)

	owner, err := fake.client().Owner(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "owner", owner)
}
