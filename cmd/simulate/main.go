package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/agent"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/config"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/skirmish"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	games := flag.Int("games", -1, "Number of games to play (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Base seed (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	useMacros := flag.Bool("macros", false, "Submit agent turns as macro plans")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *games == -1 {
		*games = cfg.Simulation.Games
	}
	if *seed == -1 {
		*seed = int64(cfg.Simulation.Seed)
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if !*useMacros {
		*useMacros = cfg.Simulation.UseMacros
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	params, err := cfg.SkirmishParams()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid skirmish parameters")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if path := config.ConfigFilePath(); path != "" {
		config.WatchConfig(func() {
			log.Info().Str("file", path).Msg("Config reloaded; changes apply to the next run")
		}, func(err error) {
			log.Warn().Err(err).Msg("Ignoring invalid config change")
		})
	}

	log.Info().
		Int("games", *games).
		Int("players", cfg.Simulation.Players).
		Int64("seed", *seed).
		Bool("macros", *useMacros).
		Msg("Starting skirmish simulation")

	wins := make([]int, cfg.Simulation.Players)
	draws, unfinished := 0, 0
	for i := 0; i < *games; i++ {
		gameSeed := uint64(*seed) + uint64(i)
		sum, err := playGame(ctx, cfg, params, gameSeed, *useMacros)
		if err != nil {
			log.Error().Err(err).Uint64("seed", gameSeed).Msg("Game aborted")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		switch {
		case !sum.Finished:
			unfinished++
		case sum.Winner >= 0:
			wins[sum.Winner]++
		default:
			draws++
		}
	}

	fmt.Printf("Played %d games: wins %v, draws %d, unfinished %d\n", *games, wins, draws, unfinished)
}

func playGame(ctx context.Context, cfg *config.Config, params skirmish.Params, seed uint64, useMacros bool) (agent.Summary, error) {
	logger := log.Logger.With().Uint64("seed", seed).Logger()

	var bus *events.EventBus
	if cfg.Logging.EventLog {
		bus = events.NewEventBus(logger)
		sub := subscribers.NewLoggerSubscriber("event-log", logger, zerolog.InfoLevel)
		sub.SetEventFilter(cfg.Logging.EventTypes)
		bus.Subscribe(sub)
	}

	fm, err := game.NewForwardModel(game.GameConfig{
		Rules:    skirmish.NewRules(params, logger),
		Logger:   logger,
		EventBus: bus,
	})
	if err != nil {
		return agent.Summary{}, err
	}

	agents := make([]agent.Agent, cfg.Simulation.Players)
	for p := range agents {
		agents[p] = agent.NewRandomAgent(seed*31 + uint64(p))
	}
	runner, err := agent.NewRunner(fm, agents, agent.RunnerConfig{
		MaxActions:  cfg.Simulation.MaxActions,
		UseMacros:   useMacros,
		MacroLength: cfg.Simulation.MacroLength,
	}, logger)
	if err != nil {
		return agent.Summary{}, err
	}
	return runner.Play(ctx, cfg.Simulation.Players, seed)
}

func setupLogging(level, format string) {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" || format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
