package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DefaultEnvFile   = ".env"
	TwitterAPIBase   = "https://api.twitter.com/1.1/"
	PageSize         = 200
	InitialCursor    = int64(-1)
	StubOwner        = "stub_user"
	DefaultLogLevel  = "info"
	DefaultFormat    = FormatHTML
	DefaultStore     = StoreNone
	DefaultOutputDir = "."
)

// Форматы вывода.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// Хранилища результата.
const (
	StoreNone  = "none"
	StoreNeo4j = "neo4j"
	StoreMongo = "mongo"
)

// Ключи флагов cobra, переменных окружения и viper.
const (
	KeyFormat            = "format"
	KeyUseStub           = "use-stub"
	KeyOutputDir         = "output-dir"
	KeyProfiles          = "profiles"
	KeyStore             = "store"
	KeyInput             = "input"
	KeyLogLevel          = "log-level"
	KeyLogFile           = "log-file"
	KeyEnvFile           = "env-file"
	KeyAccessTokenKey    = "twitter_access_token_key"
	KeyAccessTokenSecret = "twitter_access_token_secret"
	KeyConsumerKey       = "twitter_consumer_key"
	KeyConsumerSecret    = "twitter_consumer_secret"
	KeyNeo4jURI          = "neo4j_uri"
	KeyNeo4jUser         = "neo4j_user"
	KeyNeo4jPassword     = "neo4j_password"
	KeyMongoURI          = "mongo_uri"
	KeyMongoDatabase     = "mongo_database"
)

type Credentials struct {
	AccessTokenKey    string
	AccessTokenSecret string
	ConsumerKey       string
	ConsumerSecret    string
}

type Neo4j struct {
	URI      string
	User     string
	Password string
}

type Mongo struct {
	URI      string
	Database string
}

// Config содержит настройки команды после объединения флагов и окружения.
type Config struct {
	Format      string
	UseStub     bool
	OutputDir   string
	ProfilesOut string
	Store       string
	Input       string
	Twitter     Credentials
	Neo4j       Neo4j
	Mongo       Mongo
}

// ConfigError означает неверное значение флага или переменной окружения.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config %s=%q: %s", e.Field, e.Value, e.Reason)
}

// LoadEnv загружает переменные из env-файла в окружение процесса.
// Отсутствие файла не ошибка: переменные могут быть уже экспортированы.
func LoadEnv(file string) error {
	if file == "" {
		file = DefaultEnvFile
	}
	if _, err := os.Stat(file); os.IsNotExist(err) {
		logrus.Debugf("env file %s not found, using process environment", file)
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return errors.Wrap(err, "load env")
	}
	return nil
}

// NewViper возвращает viper, который читает из окружения только известные переменные.
func NewViper() *viper.Viper {
	v := viper.New()
	for _, key := range []string{
		KeyAccessTokenKey, KeyAccessTokenSecret, KeyConsumerKey, KeyConsumerSecret,
		KeyNeo4jURI, KeyNeo4jUser, KeyNeo4jPassword, KeyMongoURI, KeyMongoDatabase,
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyStore, DefaultStore)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyEnvFile, DefaultEnvFile)
	v.SetDefault(KeyNeo4jURI, "neo4j://localhost:7687")
	v.SetDefault(KeyMongoURI, "mongodb://localhost:27017")
	v.SetDefault(KeyMongoDatabase, "follow_diff")
	return v
}

// FromViper собирает Config из значений флагов и окружения.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Format:      strings.ToLower(strings.TrimSpace(v.GetString(KeyFormat))),
		UseStub:     v.GetBool(KeyUseStub),
		OutputDir:   v.GetString(KeyOutputDir),
		ProfilesOut: v.GetString(KeyProfiles),
		Store:       strings.ToLower(strings.TrimSpace(v.GetString(KeyStore))),
		Input:       v.GetString(KeyInput),
		Twitter: Credentials{
			AccessTokenKey:    v.GetString(KeyAccessTokenKey),
			AccessTokenSecret: v.GetString(KeyAccessTokenSecret),
			ConsumerKey:       v.GetString(KeyConsumerKey),
			ConsumerSecret:    v.GetString(KeyConsumerSecret),
		},
		Neo4j: Neo4j{
			URI:      v.GetString(KeyNeo4jURI),
			User:     v.GetString(KeyNeo4jUser),
			Password: v.GetString(KeyNeo4jPassword),
		},
		Mongo: Mongo{
			URI:      v.GetString(KeyMongoURI),
			Database: v.GetString(KeyMongoDatabase),
		},
	}
}

// ValidateReconcile проверяет настройки reconcile до первого запроса.
func (c *Config) ValidateReconcile() error {
	switch c.Format {
	case FormatJSON, FormatHTML:
	default:
		return &ConfigError{Field: KeyFormat, Value: c.Format, Reason: "must be json or html"}
	}
	switch c.Store {
	case StoreNone, StoreNeo4j, StoreMongo:
	default:
		return &ConfigError{Field: KeyStore, Value: c.Store, Reason: "must be none, neo4j or mongo"}
	}
	if !c.UseStub {
		return c.Twitter.validate()
	}
	return nil
}

// ValidateDownload проверяет настройки download-images.
func (c *Config) ValidateDownload() error {
	if c.Input == "" {
		return &ConfigError{Field: KeyInput, Reason: "required"}
	}
	return nil
}

func (c Credentials) validate() error {
	required := []struct{ key, value string }{
		{KeyAccessTokenKey, c.AccessTokenKey},
		{KeyAccessTokenSecret, c.AccessTokenSecret},
		{KeyConsumerKey, c.ConsumerKey},
		{KeyConsumerSecret, c.ConsumerSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigError{Field: strings.ToUpper(r.key), Reason: "is not set"}
		}
	}
	return nil
}
