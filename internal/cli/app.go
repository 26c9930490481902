package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/pkg/client"
	"github.com/Sternrassler/boutique-hotel-client/pkg/config"
	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
	"github.com/Sternrassler/boutique-hotel-client/pkg/logging"
	"github.com/Sternrassler/boutique-hotel-client/pkg/session"
)

type globalFlags struct {
	apiURL      string
	logLevel    string
	quiet       bool
	output      string
	metricsDump bool
}

// app carries what the commands share: configuration, the API client and
// the stores built on it.
type app struct {
	flags globalFlags

	cfg      *config.Config
	redis    *redis.Client
	api      *client.Client
	rooms    *hotel.RoomStore
	bookings *hotel.BookingStore
	users    *hotel.UserStore
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := validateFormat(a.flags.output); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.flags.apiURL != "" {
		cfg.APIURL = a.flags.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.quiet {
		cfg.LogLevel = string(logging.LevelDisabled)
	}
	a.cfg = cfg

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})
	logger = logging.NewLogger(logging.ComponentCLI)
	logger.Debug().
		Str("api_url", cfg.APIURL).
		Bool("env_file", cfg.EnvFileLoaded).
		Bool("redis", cfg.RedisURL != "").
		Msg("Configuration loaded")

	a.redis, err = cfg.RedisClient()
	if err != nil {
		return err
	}
	if a.redis != nil {
		if err := a.redis.Ping(cmd.Context()).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, continuing without cache")
			a.redis.Close()
			a.redis = nil
		}
	}

	a.api, err = client.New(cfg.ClientConfig(a.redis))
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	tokens, err := session.NewFileTokenStore(cfg.TokenFile)
	if err != nil {
		return err
	}
	a.rooms = hotel.NewRoomStore(a.api)
	a.bookings = hotel.NewBookingStore(a.api)
	a.users = hotel.NewUserStore(a.api, tokens)
	return nil
}

func (a *app) close() {
	if a.api != nil {
		a.api.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func (a *app) pageSize(flag int) int {
	if flag > 0 {
		return flag
	}
	return a.cfg.PageSize
}
