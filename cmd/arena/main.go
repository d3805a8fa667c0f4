package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evymii/ard-arena/internal/assets"
	"github.com/evymii/ard-arena/internal/client"
	"github.com/evymii/ard-arena/internal/combat"
	"github.com/evymii/ard-arena/internal/config"
	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/input"
	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/net/ws"
	"github.com/evymii/ard-arena/internal/remote"
	"github.com/evymii/ard-arena/internal/replay"
	"github.com/evymii/ard-arena/internal/telemetry"
	"github.com/evymii/ard-arena/logging"
	loggingSinks "github.com/evymii/ard-arena/logging/sinks"
)

const (
	modeBasic       = "basic"
	modeMultiplayer = "multiplayer"
	modeNetwork     = "network"
)

var (
	modeFlag     = flag.String("mode", modeBasic, "Game mode: basic, multiplayer, network")
	serverFlag   = flag.String("server", fmt.Sprintf("ws://localhost:%d/ws", config.DefaultPort), "Relay websocket URL for network games")
	gameFlag     = flag.String("game", "", "Game name to create or join in network games")
	hostFlag     = flag.Bool("host", false, "Create the network game instead of joining it")
	p1Flag       = flag.String("p1", "subzero", "Character on the left")
	p2Flag       = flag.String("p2", "kano", "Character on the right")
	manifestFlag = flag.String("manifest", "", "YAML frame size manifest (overrides config)")
	framesFlag   = flag.String("frames", "", "Directory of fighter frame pictures")
	scaleFlag    = flag.Float64("scale", 1, "Lane units per frame picture pixel")
	recordFlag   = flag.String("record", "", "Write a replay of the local match to this file")
	replayFlag   = flag.String("replay", "", "Play a replay file and print the final state")
	logFlag      = flag.String("log", "", "Write logs to this file; the terminal belongs to the game")
	muteFlag     = flag.Bool("mute", false, "Disable hit sounds")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger, err := newLogger(*logFlag, cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *replayFlag != "" {
		err = playReplay(ctx, cfg, *replayFlag, logger)
	} else {
		err = play(ctx, cfg, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v", err)
	}
}

func newLogger(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

func frameSource(cfg config.Config) (fighter.FrameSource, error) {
	if *framesFlag != "" {
		return assets.Dir{Root: *framesFlag, Scale: *scaleFlag}, nil
	}
	path := cfg.Match.Manifest
	if *manifestFlag != "" {
		path = *manifestFlag
	}
	if path == "" {
		return assets.DefaultUniform(), nil
	}
	return assets.LoadManifest(path)
}

// eventRouter sends gameplay events to the process logger only; console
// output would draw over the game.
func eventRouter(cfg config.Config, logger *zap.Logger) (*logging.Router, error) {
	logCfg := cfg.Logging()
	logCfg.EnabledSinks = []string{"zap"}
	sinks, err := loggingSinks.Build(logCfg, nil, logger)
	if err != nil {
		return nil, err
	}
	return logging.NewRouter(nil, logCfg, sinks, logger), nil
}

func play(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	switch *modeFlag {
	case modeBasic, modeMultiplayer, modeNetwork:
	default:
		return fmt.Errorf("unknown mode %q", *modeFlag)
	}
	telemetryLogger := telemetry.WrapZap(logger)

	frames, err := frameSource(cfg)
	if err != nil {
		return err
	}
	router, err := eventRouter(cfg, logger)
	if err != nil {
		return err
	}
	defer router.Close(context.Background())

	var cl *client.Client
	matchCfg := match.Config{
		Characters: [2]string{*p1Flag, *p2Flag},
		LaneWidth:  cfg.Match.LaneWidth,
		LaneHeight: cfg.Match.LaneHeight,
		Countdown:  cfg.Match.Countdown,
		Frames:     frames,
		Publisher:  router,
		Logger:     telemetryLogger,
		OnAttack: func(ev combat.AttackEvent) {
			if cl != nil {
				cl.Hit(ev)
			}
		},
		OnEnd: func(r match.Result) {
			logger.Info("match over", zap.String("reason", string(r.Reason)), zap.Int("winner", r.Winner))
		},
	}
	m, err := match.New(matchCfg)
	if err != nil {
		return err
	}
	recorder := replay.NewRecorder(matchCfg)
	runner := match.NewRunner(m, match.RunnerConfig{
		OnFrame: func(s match.Snapshot) {
			if cl != nil {
				cl.Frame(s)
			}
		},
		Recorder: recorder,
	})

	var mirror *remote.Mirror
	var players []client.Player
	switch *modeFlag {
	case modeBasic:
		players = []client.Player{{Side: 0, Keymap: input.Single, Intent: client.RunnerIntent(runner, 0)}}
	case modeMultiplayer:
		players = []client.Player{
			{Side: 0, Keymap: input.PlayerOne, Intent: client.RunnerIntent(runner, 0)},
			{Side: 1, Keymap: input.PlayerTwo, Intent: client.RunnerIntent(runner, 1)},
		}
	case modeNetwork:
		conn, err := connect(ctx, telemetryLogger)
		if err != nil {
			return err
		}
		defer conn.Close()
		mirror = remote.NewMirror(conn, runner, remote.Config{Host: *hostFlag, Logger: telemetryLogger})
		players = []client.Player{{Side: mirror.LocalSide(), Keymap: input.Single, Intent: mirror.Intent}}
	}

	if err := m.Init(ctx, func() {
		if mirror != nil {
			mirror.Attach(m)
		}
	}); err != nil {
		return err
	}

	sound := newSound(logger)
	defer sound.Close()
	cl, err = client.New(client.Config{
		Players: players,
		Sound:   sound,
		Logger:  telemetryLogger,
	})
	if err != nil {
		m.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		return cl.Run(gctx)
	})
	if mirror != nil {
		g.Go(func() error {
			err := mirror.Run(gctx)
			if errors.Is(err, remote.ErrTransportClosed) {
				return nil
			}
			return err
		})
	}
	err = g.Wait()
	cl.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if *recordFlag != "" {
		recorder.Finish(m.Now())
		if saveErr := replay.Save(*recordFlag, recorder.Log()); saveErr != nil {
			return errors.Join(err, saveErr)
		}
	}
	if m.Over() {
		fmt.Println(resultLine(m.Snapshot()))
	}
	return err
}

func connect(ctx context.Context, logger telemetry.Logger) (*ws.Client, error) {
	if *gameFlag == "" {
		return nil, errors.New("network games need -game")
	}
	conn, err := ws.Dial(ctx, *serverFlag)
	if err != nil {
		return nil, err
	}
	if *hostFlag {
		fmt.Printf("created %q, waiting for an opponent...\n", *gameFlag)
		err = remote.Host(ctx, conn, *gameFlag)
	} else {
		err = remote.Join(ctx, conn, *gameFlag)
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Printf("connected to game %s", *gameFlag)
	return conn, nil
}

func newSound(logger *zap.Logger) client.Sound {
	if *muteFlag {
		return client.Silent{}
	}
	s, err := client.NewSpeaker()
	if err != nil {
		logger.Warn("sound disabled", zap.Error(err))
		return client.Silent{}
	}
	return s
}

func playReplay(ctx context.Context, cfg config.Config, path string, logger *zap.Logger) error {
	rec, err := replay.Load(path)
	if err != nil {
		return err
	}
	frames, err := frameSource(cfg)
	if err != nil {
		return err
	}
	snap, err := replay.Play(ctx, rec, match.Config{
		Frames: frames,
		Logger: telemetry.WrapZap(logger),
	})
	if err != nil {
		return err
	}
	for side, f := range snap.Fighters {
		fmt.Printf("fighter %d %-8s life=%5.1f x=%6.1f move=%s\n", side, f.Name, f.Life, f.X, f.Move)
	}
	fmt.Printf("countdown %d\n", snap.Countdown)
	if snap.Over {
		fmt.Println(resultLine(snap))
	}
	return nil
}

func resultLine(snap match.Snapshot) string {
	r := snap.Result
	if r == nil {
		return ""
	}
	if r.Draw {
		return fmt.Sprintf("draw (%s)", r.Reason)
	}
	return fmt.Sprintf("%s wins (%s)", snap.Fighters[r.Winner].Name, r.Reason)
}
