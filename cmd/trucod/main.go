// Command trucod serves Truco rooms over websockets without Nakama.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"truco/internal/app"
	"truco/internal/cluster"
	"truco/internal/config"
	"truco/internal/logging"
	"truco/internal/ports/natsbus"
	"truco/internal/ports/ws"
)

const (
	serviceName = "trucod"
	envPrefix   = "truco_"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "data/game_config.json", "game config file")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "NATS url for game results; empty disables publishing")
	consulAddr := flag.String("consul", os.Getenv("CONSUL_HTTP_ADDR"), "consul agent address; empty disables registration")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel)

	if err := config.LoadGameConfig(*configPath); err != nil {
		logger.Warn("Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	cfg.ApplyEnv(environ(), envPrefix)

	health := cluster.NewHealth()
	gw := ws.NewGateway(logger)
	sinks := app.Sinks{gw}

	if *natsURL != "" {
		pub, err := natsbus.Connect(*natsURL, serviceName, logger)
		if err != nil {
			logger.Error("Results will not be published: %v", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
			health.AddCheck("nats", pub.Check)
		}
	}

	reg := app.NewRegistry(cfg.Rules(), sinks)
	defer reg.Close()
	gw.Bind(reg)

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	mux.Handle(cluster.HealthPath, health)
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("trucod listening on %s (target=%d auto_deal=%t)", *addr, cfg.TargetScore, cfg.AutoDeal)
		errCh <- srv.ListenAndServe()
	}()

	if *consulAddr != "" {
		deregister, err := cluster.Register(cluster.Registration{
			ConsulAddr:  *consulAddr,
			ServiceName: serviceName,
			Port:        port(*addr),
			Tags:        []string{"truco", "ws"},
		}, logger)
		if err != nil {
			logger.Error("Consul registration failed: %v", err)
		} else {
			defer deregister()
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
		}
		return
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown: %v", err)
	}
}

// environ returns the process environment with lower-cased keys so
// TRUCO_TARGET_SCORE overrides target_score.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[strings.ToLower(k)] = v
		}
	}
	return env
}

func port(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(p)
	return n
}
