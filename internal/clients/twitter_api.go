package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/garyburd/go-oauth/oauth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type TwitterClient struct {
	BaseURL string
	Client  *http.Client
	oauth   oauth.Client
	token   *oauth.Credentials
}

func NewTwitterClient(creds config.Credentials) *TwitterClient {
	return &TwitterClient{
		BaseURL: config.TwitterAPIBase,
		Client:  &http.Client{},
		oauth: oauth.Client{
			Credentials: oauth.Credentials{Token: creds.ConsumerKey, Secret: creds.ConsumerSecret},
		},
		token: &oauth.Credentials{Token: creds.AccessTokenKey, Secret: creds.AccessTokenSecret},
	}
}

type twitterErrorResponse struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// makeTwitterRequest выполняет подписанный GET-запрос к Twitter API и декодирует ответ.
func (tw *TwitterClient) makeTwitterRequest(ctx context.Context, endpoint string, params url.Values, response interface{}) error {
	u, err := url.Parse(tw.BaseURL + endpoint + ".json")
	if err != nil {
		return errors.Wrapf(err, "parse url for %s", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String()+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if err := tw.oauth.SetAuthorizationHeader(req.Header, tw.token, http.MethodGet, u, params); err != nil {
		return errors.Wrap(err, "sign request")
	}

	resp, err := tw.Client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"url":      u.String(),
			"error":    err,
		}).Error("Ошибка выполнения запроса к Twitter API")
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"error":    err,
			}).Warning("Не удалось закрыть тело ответа")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var twErr twitterErrorResponse
		if json.Unmarshal(bodyBytes, &twErr) == nil && len(twErr.Errors) > 0 {
			apiErr.Code = twErr.Errors[0].Code
			apiErr.Message = twErr.Errors[0].Message
		}
		logrus.WithFields(logrus.Fields{
			"endpoint":    endpoint,
			"url":         u.String(),
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		}).Error("Неправильный статус код от Twitter API")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		logrus.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"url":      u.String(),
			"error":    err,
		}).Error("Ошибка декодирования JSON ответа от Twitter API")
		return &TransportError{Endpoint: endpoint, Err: errors.Wrap(err, "json decode")}
	}
	return nil
}

// Get возвращает одну страницу followers/list или friends/list.
func (tw *TwitterClient) Get(ctx context.Context, endpoint string, params models.PageParams) (*models.Page, error) {
	values := url.Values{}
	values.Set("skip_status", strconv.FormatBool(params.SkipStatus))
	values.Set("count", strconv.Itoa(params.Count))
	values.Set("cursor", strconv.FormatInt(params.Cursor, 10))

	var page models.Page
	if err := tw.makeTwitterRequest(ctx, endpoint, values, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Owner возвращает screen name владельца токена.
func (tw *TwitterClient) Owner(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("skip_status", "true")

	var response struct {
		ScreenName string `json:"screen_name"`
	}
	if err := tw.makeTwitterRequest(ctx, "account/verify_credentials", params, &response); err != nil {
		return "", err
	}
	if response.ScreenName == "" {
		return "", &APIError{Endpoint: "account/verify_credentials", Message: "empty screen_name"}
	}
	logrus.Infof("Получен screen name текущего пользователя: %s", response.ScreenName)
	return response.ScreenName, nil
}
