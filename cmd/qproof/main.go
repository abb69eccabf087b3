package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kroma-network/qproof-proxy/internal/optimizer"
	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

var log = logging.Logger("main")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("qproof: %w", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "qproof"
	app.Usage = "commit zero-error optimization paths for on-chain verification"
	app.Version = "0.1.0"
	app.Flags = AllFlags()
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:   "prove",
			Usage:  "run the proof pipeline once and print the commitment",
			Flags:  []cli.Flag{Action, Features},
			Action: prove,
		},
		{
			Name:   "commit",
			Usage:  "recompute the commitment of a disclosed path and seed",
			Flags:  []cli.Flag{Path, Seed},
			Action: commit,
		},
		{
			Name:   "verify",
			Usage:  "check a commitment against a disclosed path and seed",
			Flags:  []cli.Flag{Path, Seed, Commitment},
			Action: verify,
		},
		{
			Name:   "dumpconfig",
			Usage:  "print the effective configuration as TOML",
			Flags:  []cli.Flag{Out},
			Action: dumpConfig,
		},
		{
			Name:   "serve-optimizer",
			Usage:  "serve the fixed optimization engine over gRPC for local development",
			Flags:  []cli.Flag{Listen},
			Action: serveOptimizer,
		},
	}
	return app
}

func serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	deps, err := newCollaborators(cfg)
	if err != nil {
		return err
	}
	srv := http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port)),
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           qproof.NewServer(deps.pipeline()),
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("failed to serve: %w", err)
		}
	}()
	log.Infof("qproof listening on %s", srv.Addr)

	var result error
	select {
	case <-interrupted():
	case err := <-serveErr:
		result = multierror.Append(result, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close http server: %w", err))
	}
	if err := deps.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

func prove(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	deps, err := newCollaborators(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	req := qproof.Request{Action: ctx.String(Action.Name), Features: ctx.StringSlice(Features.Name)}
	commitment, err := deps.pipeline().Prove(runCtx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, commitment.Hex())
	return nil
}

func commit(ctx *cli.Context) error {
	seed := ctx.String(Seed.Name)
	if seed == "" {
		return errors.New("--seed is required")
	}
	fmt.Fprintln(ctx.App.Writer, qproof.Commit(ctx.StringSlice(Path.Name), qproof.Seed(seed)).Hex())
	return nil
}

func verify(ctx *cli.Context) error {
	expected, err := qproof.ParseCommitment(ctx.String(Commitment.Name))
	if err != nil {
		return err
	}
	if !qproof.Verify(ctx.StringSlice(Path.Name), qproof.Seed(ctx.String(Seed.Name)), expected) {
		return cli.NewExitError("commitment mismatch", 2)
	}
	fmt.Fprintln(ctx.App.Writer, "commitment matches")
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if out := ctx.String(Out.Name); out != "" {
		return cfg.WriteFile(out)
	}
	return cfg.Encode(ctx.App.Writer)
}

func serveOptimizer(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ctx.String(Listen.Name))
	if err != nil {
		return err
	}
	s := grpc.NewServer()
	optimizer.RegisterGRPCServer(s, optimizer.Fixed{Path: cfg.Optimizer.FixedPath, FailureReason: cfg.Optimizer.FailureReason})
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(optimizer.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-interrupted()
		s.GracefulStop()
	}()
	log.Infof("fixed optimizer listening on %s", lis.Addr())
	return s.Serve(lis)
}

func interrupted() <-chan os.Signal {
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	return interruptChannel
}
