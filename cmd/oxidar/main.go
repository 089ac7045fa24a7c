package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oxidar-web/oxidar"
	"github.com/oxidar-web/oxidar/config"
	"github.com/oxidar-web/oxidar/errors"
	"github.com/oxidar-web/oxidar/http"
	"github.com/oxidar-web/oxidar/http/method"
	"github.com/oxidar-web/oxidar/http/status"
	"github.com/oxidar-web/oxidar/internal/logging"
)

var startedAt = time.Now()

func World(*oxidar.Server, *http.Request) (*http.Response, error) {
	return http.OK("<h1>Hello, world!</h1>"), nil
}

func Health(srv *oxidar.Server, req *http.Request) (*http.Response, error) {
	if req.Method != method.GET && req.Method != method.HEAD {
		return nil, errors.BadRequestf("Method %s is not supported here.", req.Method)
	}

	content, err := http.Marshal(map[string]any{
		"status":  "ok",
		"uptime":  time.Since(startedAt).String(),
		"workers": srv.Config().Pool.Workers,
	})
	if err != nil {
		return nil, err
	}

	return http.Respond(status.OK, content), nil
}

func Easter(_ *oxidar.Server, req *http.Request) (*http.Response, error) {
	if _, found := req.Header("Easter"); found {
		return http.OK("You have discovered an easter egg! Congratulations!"), nil
	}

	return nil, errors.HTTP404("Pretty ordinary page, isn't it?")
}

func Stressful(*oxidar.Server, *http.Request) (*http.Response, error) {
	panic("TOO MUCH STRESS")
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log, cfg.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := oxidar.New(cfg, logger).
		Register("/health", oxidar.HandlerFunc(Health)).
		Register("/easter", oxidar.HandlerFunc(Easter)).
		Register("/stress", oxidar.HandlerFunc(Stressful)).
		Register("/", oxidar.HandlerFunc(World)).
		NotifyOnStop(func() {
			logger.Info().Msg("Bye")
		})

	return srv.Run(ctx)
}

func main() {
	path := flag.String("config", "", "path to the TOML configuration file")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "oxidar: %v\n", err)
		os.Exit(1)
	}
}
