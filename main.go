package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/wfunc/teenpatti-player/broadcast"
	"github.com/wfunc/teenpatti-player/config"
	"github.com/wfunc/teenpatti-player/dealer"
	"github.com/wfunc/teenpatti-player/deck"
	"github.com/wfunc/teenpatti-player/logger"
	"github.com/wfunc/teenpatti-player/monitor"
	"github.com/wfunc/teenpatti-player/persistence"
	"github.com/wfunc/teenpatti-player/players"
	"github.com/wfunc/teenpatti-player/rpc"
	"github.com/wfunc/teenpatti-player/server"
	"github.com/wfunc/teenpatti-player/services"
	"github.com/wfunc/teenpatti-player/session"
	"golang.org/x/sync/errgroup"
)

var cli struct {
	Config            string        `default:"." help:"Directory containing config.yaml."`
	Seed              int64         `help:"Seed for dealing hands. Zero deals from a random seed."`
	BalanceFromDealer bool          `help:"Ask the dealer for the initial balance at startup."`
	ShutdownTimeout   time.Duration `default:"5s" help:"Grace period for in-flight requests on shutdown."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("teenpatti-player"),
		kong.Description("Teen Patti player agent"),
		kong.UsageOnError(),
	)

	logger.Init("info")

	// Load configuration
	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open %s database: %v", cfg.Database.Driver, err)
	}
	defer db.Close()
	logger.Log.Infof("Audit log using %s driver.", cfg.Database.Driver)

	clock := quartz.NewReal()
	dealerClient := dealer.NewClient(cfg.Dealer.URL, dealer.Options{
		Timeout: cfg.Dealer.Timeout,
		Retries: cfg.Dealer.Retries,
		Backoff: cfg.Dealer.Backoff,
		Clock:   clock,
	})

	initialBalance := cfg.Player.InitialBalance
	if cli.BalanceFromDealer {
		balance, err := dealerClient.InitialBalance(ctx)
		if err != nil {
			logger.Log.Warnf("Dealer did not report an initial balance, using %d: %v", initialBalance, err)
		} else {
			initialBalance = balance
		}
	}

	src := deck.NewRandomSource()
	if cli.Seed != 0 {
		src = deck.NewSource(cli.Seed)
	}

	mon := monitor.NewMonitor("teenpatti_player")
	sessions := session.NewManager()
	playerService, err := services.NewPlayerService(
		players.NewStore(src, clock),
		dealerClient,
		db,
		broadcast.NewSessionBroadcaster(sessions),
		mon,
		services.Options{
			InitialBalance: initialBalance,
			HostURL:        cfg.Player.HostURL,
			NotifyOnJoin:   cfg.Dealer.NotifyOnJoin,
			Clock:          clock,
		},
	)
	if err != nil {
		logger.Log.Fatalf("Failed to create player service: %v", err)
	}

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, playerService, sessions, mon)

	var rpcServer *rpc.Server
	if cfg.Server.RPCAddress != "" {
		rpcServer, err = rpc.NewServer(cfg.Server.RPCAddress, playerService)
		if err != nil {
			logger.Log.Fatalf("Failed to start RPC server: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(gameServer.Start)
	if rpcServer != nil {
		g.Go(func() error {
			rpcServer.Start()
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down player agent.")
		if rpcServer != nil {
			rpcServer.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return gameServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatalf("Server error: %v", err)
	}
}
