package main

import (
	"strings"

	"backend-bandoxanh/internal/client"
	"backend-bandoxanh/internal/feedstore"
	"backend-bandoxanh/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is what every subcommand needs, built lazily from flags and env.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("BANDOXANH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "bandoxanh",
		Short:         "Browse green points on the map and the community feed",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("api", client.DefaultBaseURL, "API base URL (env BANDOXANH_API)")
	root.PersistentFlags().String("token", "", "bearer token (env BANDOXANH_TOKEN)")
	root.PersistentFlags().String("log-level", "error", "log level (env BANDOXANH_LOG_LEVEL)")
	for _, name := range []string{"api", "token", "log-level"} {
		_ = a.v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(
		newMapCmd(a),
		newFeedCmd(a),
		newPostCmd(a),
		newCommentCmd(a),
	)
	return root
}

func (a *app) logger() *zap.Logger {
	log, err := logging.New(a.v.GetString("log-level"))
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (a *app) client() (*client.Client, error) {
	return client.New(a.v.GetString("api"), client.WithToken(a.v.GetString("token")))
}

func (a *app) store(c *client.Client) *feedstore.Store {
	return feedstore.New(c, feedstore.WithLogger(a.logger().Named("feedstore")))
}
