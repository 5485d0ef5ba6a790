// The engine binary runs one full match: it loads a ruleset and a map,
// seeds a world, drives the built-in scripted agents round by round, and
// records the match log. It is a driver for the sim core, not part of it.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"gridwar.gg/internal/mapfile"
	"gridwar.gg/internal/matchlog"
	"gridwar.gg/internal/persistence/indexdb"
	persistlog "gridwar.gg/internal/persistence/log"
	"gridwar.gg/internal/sim/match"
	"gridwar.gg/internal/sim/rules"
	"gridwar.gg/internal/sim/world"
	"gridwar.gg/internal/spectate"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "engine config file (optional)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	v := viper.New()
	v.SetDefault("ruleset", "configs/rulesets/standard.yaml")
	v.SetDefault("map", "configs/maps/skirmish.json")
	v.SetDefault("map_schema", "configs/schema/map.schema.json")
	v.SetDefault("seed", int64(1))
	v.SetDefault("max_rounds", 0) // 0 means the map's round limit
	v.SetDefault("out_dir", "data/matches")
	v.SetDefault("index_db", "data/index.db")
	v.SetDefault("spectate_addr", "") // e.g. 127.0.0.1:7021
	v.SetEnvPrefix("GRIDWAR")
	v.AutomaticEnv()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			logger.Fatal().Err(err).Msg("read config")
		}
	}

	if err := run(logger, v); err != nil {
		logger.Fatal().Err(err).Msg("match failed")
	}
}

func run(logger zerolog.Logger, v *viper.Viper) error {
	rs, err := rules.Load(v.GetString("ruleset"))
	if err != nil {
		return err
	}
	m, err := mapfile.Load(v.GetString("map"), v.GetString("map_schema"))
	if err != nil {
		return err
	}

	seed := v.GetInt64("seed")
	rubble, alloy, crystal := m.Layers()
	w, err := world.New(world.Config{
		Rules:     rs,
		Seed:      seed,
		Width:     m.Width,
		Height:    m.Height,
		Rubble:    rubble,
		Alloy:     alloy,
		Crystal:   crystal,
		Anomalies: m.AnomalySchedule(),
	})
	if err != nil {
		return err
	}
	for _, su := range m.Units {
		u, err := w.SpawnUnit(mapfile.TeamOf(su.Team), su.Archetype, world.Loc{X: su.X, Y: su.Y})
		if err != nil {
			return fmt.Errorf("place initial unit: %w", err)
		}
		w.Log().AppendSpawned(u.ID, int(u.Team), u.Loc.X, u.Loc.Y)
	}

	matchID := uuid.NewString()
	logPath := filepath.Join(v.GetString("out_dir"), matchID+".jsonl.zst")
	writer, err := persistlog.Create(logPath, persistlog.Header{
		MatchID:       matchID,
		Map:           m.Name,
		Ruleset:       rs.Name,
		RulesetDigest: rs.Digest,
		Seed:          seed,
	})
	if err != nil {
		return err
	}
	defer writer.Close()

	sinks := multiSink{writer}
	var hub *spectate.Hub
	if addr := v.GetString("spectate_addr"); addr != "" {
		hub = spectate.NewHub(logger)
		sinks = append(sinks, hub)
		mux := http.NewServeMux()
		mux.Handle("/spectate", hub.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("spectate server")
			}
		}()
		defer srv.Close()
		logger.Info().Str("addr", addr).Msg("spectators welcome")
	}

	maxRounds := v.GetInt("max_rounds")
	if maxRounds <= 0 {
		maxRounds = m.Rounds
	}
	runner := match.NewRunner(w, newScriptedAgent(), newScriptedAgent(), sinks)
	logger.Info().
		Str("match_id", matchID).
		Str("map", m.Name).
		Str("ruleset", rs.Name).
		Int64("seed", seed).
		Msg("match starting")

	played, err := runner.Play(maxRounds)
	if err != nil {
		return err
	}
	if hub != nil {
		hub.Close()
	}
	if err := writer.Close(); err != nil {
		return err
	}

	winner := decideWinner(w)
	finalDigest := ""
	if all := w.Log().Rounds(); len(all) > 0 {
		finalDigest = all[len(all)-1].Digest
	}
	logger.Info().
		Int("rounds", played).
		Str("winner", winner).
		Int("units_a", w.UnitCount(world.TeamA)).
		Int("units_b", w.UnitCount(world.TeamB)).
		Msg("match finished")

	db, err := indexdb.Open(v.GetString("index_db"))
	if err != nil {
		return err
	}
	defer db.Close()
	return db.InsertMatch(indexdb.MatchRow{
		MatchID:     matchID,
		Map:         m.Name,
		Ruleset:     rs.Name,
		Seed:        seed,
		Rounds:      played,
		Winner:      winner,
		FinalDigest: finalDigest,
		LogPath:     logPath,
	})
}

// decideWinner applies the tiebreak ladder: surviving units, then votes,
// then combined resources.
func decideWinner(w *world.World) string {
	a, b := w.UnitCount(world.TeamA), w.UnitCount(world.TeamB)
	switch {
	case a > 0 && b == 0:
		return "A"
	case b > 0 && a == 0:
		return "B"
	}
	la, lb := w.Ledger(world.TeamA), w.Ledger(world.TeamB)
	if la.Votes != lb.Votes {
		if la.Votes > lb.Votes {
			return "A"
		}
		return "B"
	}
	ra, rb := la.Alloy+la.Crystal, lb.Alloy+lb.Crystal
	switch {
	case ra > rb:
		return "A"
	case rb > ra:
		return "B"
	}
	return "draw"
}

// multiSink fans each round entry out to every sink in order.
type multiSink []match.Sink

func (s multiSink) WriteRound(entry matchlog.RoundEntry) error {
	for _, sink := range s {
		if err := sink.WriteRound(entry); err != nil {
			return err
		}
	}
	return nil
}
