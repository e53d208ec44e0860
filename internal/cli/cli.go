package cli

import (
	"context"

	"github.com/ZetoOfficial/follow-diff/internal/app"
	"github.com/ZetoOfficial/follow-diff/internal/clients"
	"github.com/ZetoOfficial/follow-diff/internal/config"
	"github.com/ZetoOfficial/follow-diff/internal/export"
	"github.com/ZetoOfficial/follow-diff/internal/images"
	"github.com/ZetoOfficial/follow-diff/internal/logger"
	"github.com/ZetoOfficial/follow-diff/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd собирает дерево команд follow_diff. Флаги запущенной команды
// привязываются к viper вместе с окружением.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "follow_diff",
		Short:         "Compare Twitter followers and friends",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return errors.Wrap(err, "bind flags")
			}
			if err := logger.Setup(v.GetString(config.KeyLogLevel), v.GetString(config.KeyLogFile)); err != nil {
				return err
			}
			return config.LoadEnv(v.GetString(config.KeyEnvFile))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "Set the logging level (debug, info, warning, error).")
	flags.String(config.KeyLogFile, "", "Set the log file path. If not set, logs will be printed to console.")
	flags.String(config.KeyEnvFile, config.DefaultEnvFile, "File with TWITTER_* and storage variables.")

	rootCmd.AddCommand(
		newReconcileCmd(v),
		newDownloadImagesCmd(v),
		newQueryCmd(v),
	)
	return rootCmd
}

func newReconcileCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fetch followers and friends and split them into mutual, followers-only and friends-only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(v)
			if err := app.CheckFormat(cfg.Format); err != nil {
				return err
			}
			if err := cfg.ValidateReconcile(); err != nil {
				return err
			}
			ctx := cmd.Context()

			api, err := newTwitterApi(cfg)
			if err != nil {
				return err
			}
			sinks, closeSinks, err := openSinks(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSinks()

			_, err = app.NewApp(api, sinks...).Reconcile(ctx, app.Options{
				Format:      cfg.Format,
				OutputDir:   cfg.OutputDir,
				ProfilesOut: cfg.ProfilesOut,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyFormat, config.DefaultFormat, "Output format: json or html (html is not implemented yet).")
	flags.Bool(config.KeyUseStub, false, "Get data from stub instead Twitter API")
	flags.String(config.KeyOutputDir, config.DefaultOutputDir, "Directory for the output-<date>.json file.")
	flags.String(config.KeyProfiles, "", "Also write follower and friend profiles for download-images to this file.")
	flags.String(config.KeyStore, config.DefaultStore, "Save the result to storage: none, neo4j or mongo.")
	return cmd
}

func newDownloadImagesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download-images",
		Short: "Download profile images listed in a profiles file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(v)
			if err := cfg.ValidateDownload(); err != nil {
				return err
			}
			profiles, err := export.ReadProfiles(cfg.Input)
			if err != nil {
				return err
			}
			stats, err := images.NewDownloader(cfg.OutputDir).Run(cmd.Context(), profiles)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"attempted": stats.Attempted,
				"saved":     stats.Saved,
				"skipped":   stats.Skipped,
			}).Info("Загрузка изображений завершена")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyInput, "", "Profiles file written by reconcile --profiles.")
	flags.String(config.KeyOutputDir, config.DefaultOutputDir, "Directory for downloaded images.")
	return cmd
}

func newQueryCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "query <name>",
		Short:     "Run a predefined query against the Neo4j follow graph",
		Args:      cobra.ExactArgs(1),
		ValidArgs: storage.QueryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if !storage.IsKnownQuery(query) {
				return &config.ConfigError{Field: "query", Value: query, Reason: "unknown query"}
			}
			cfg := config.FromViper(v)
			ctx := cmd.Context()

			neo4jStorage, err := openNeo4j(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStorage(ctx, "neo4j", neo4jStorage)

			return app.RunQuery(ctx, neo4jStorage, query)
		},
	}
}

func newTwitterApi(cfg *config.Config) (app.TwitterApi, error) {
	if cfg.UseStub {
		logrus.Info("Using stub instead of Twitter API")
		stub, err := clients.NewStubClient()
		if err != nil {
			return nil, err
		}
		return stub, nil
	}
	return clients.NewTwitterClient(cfg.Twitter), nil
}

type closer interface {
	Close(ctx context.Context) error
}

func closeStorage(ctx context.Context, name string, c closer) {
	if err := c.Close(ctx); err != nil {
		logrus.Warningf("close %s storage: %v", name, err)
	}
}

func openNeo4j(ctx context.Context, cfg *config.Config) (*storage.Neo4jStorage, error) {
	neo4jStorage, err := storage.NewNeo4jStorage(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		return nil, err
	}
	if err := neo4jStorage.Ping(ctx); err != nil {
		closeStorage(ctx, "neo4j", neo4jStorage)
		return nil, errors.Wrap(err, "Не удалось подключиться к Neo4j")
	}
	logrus.Info("Подключение к Neo4j успешно установлено")
	return neo4jStorage, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*storage.MongoStorage, error) {
	mongoStorage, err := storage.NewMongoStorage(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}
	if err := mongoStorage.Ping(ctx); err != nil {
		closeStorage(ctx, "mongo", mongoStorage)
		return nil, errors.Wrap(err, "Не удалось подключиться к MongoDB")
	}
	logrus.Info("Подключение к MongoDB успешно установлено")
	return mongoStorage, nil
}

func openSinks(ctx context.Context, cfg *config.Config) ([]app.Sink, func(), error) {
	switch cfg.Store {
	case config.StoreNeo4j:
		s, err := openNeo4j(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return []app.Sink{s}, func() { closeStorage(ctx, "neo4j", s) }, nil
	case config.StoreMongo:
		s, err := openMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return []app.Sink{s}, func() { closeStorage(ctx, "mongo", s) }, nil
	default:
		return nil, func() {}, nil
	}
}
