// Command feedd runs the marketplace live-feed service: the subscriber hub,
// the HTTP API (login, event stream, admin broadcast), and a periodic ping
// publisher.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazarlabs/livefeed/auth/jwt"
	"github.com/bazarlabs/livefeed/auth/password"
	"github.com/bazarlabs/livefeed/component"
	"github.com/bazarlabs/livefeed/config"
	"github.com/bazarlabs/livefeed/logger"
	"github.com/bazarlabs/livefeed/server"
	"github.com/bazarlabs/livefeed/sse"
)

type appConfig struct {
	Base   config.BaseConfig             `mapstructure:"base"`
	Log    logger.Config                 `mapstructure:"log"`
	Server server.Config                 `mapstructure:"server"`
	JWT    jwt.Config                    `mapstructure:"jwt"`
	Users  map[string]server.UserAccount `mapstructure:"users"`
}

func main() {
	var cfg appConfig
	if err := config.LoadConfig("feedd", &cfg); err != nil {
		logger.Fatal("config load failed", map[string]interface{}{"error": err.Error()})
	}
	cfg.Base.ApplyDefaults()
	cfg.Server.ApplyDefaults()
	if err := cfg.Base.Validate(); err != nil {
		logger.Fatal("invalid config", map[string]interface{}{"error": err.Error()})
	}
	if err := cfg.Server.Validate(); err != nil {
		logger.Fatal("invalid config", map[string]interface{}{"error": err.Error()})
	}

	cfg.Log.ApplyDefaults()
	log := logger.New(&cfg.Log, cfg.Base.Name)
	logger.SetGlobalLogger(log)

	tokens, err := jwt.NewService(cfg.JWT)
	if err != nil {
		log.Fatal("token service init failed", map[string]interface{}{"error": err.Error()})
	}

	feed := sse.NewComponent()
	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	api := server.NewAPI(feed.Hub(), tokens, password.NewBcryptHasher(), cfg.Users, log)
	api.Register(srv.GinEngine())

	registry := component.NewRegistry()
	for _, c := range []component.Component{feed, srv} {
		if err := registry.Register(c); err != nil {
			log.Fatal("component registration failed", map[string]interface{}{
				"component": c.Name(),
				"error":     err.Error(),
			})
		}
	}
	srv.RegisterHealth(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.StartAll(ctx); err != nil {
		log.Fatal("startup failed", map[string]interface{}{"error": err.Error()})
	}

	// Liveness pings keep idle feeds warm through proxies and give new
	// subscribers an immediate first record.
	pingDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(pingDone)
				return
			case now := <-ticker.C:
				_ = feed.Hub().Broadcast("*", sse.Event{
					Type:    sse.EventPing,
					Payload: map[string]int64{"ts": now.Unix()},
				})
			}
		}
	}()

	log.Info("feedd started", map[string]interface{}{
		"addr":        srv.Addr(),
		"environment": cfg.Base.Environment,
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	<-pingDone

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := registry.StopAll(stopCtx); err != nil {
		log.Error("shutdown error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
