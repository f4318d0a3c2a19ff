package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"barber-reservation-api/internal/admins"
	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/booking"
	"barber-reservation-api/internal/captcha"
	"barber-reservation-api/internal/config"
	"barber-reservation-api/internal/handler"
	"barber-reservation-api/internal/httpapi"
	"barber-reservation-api/internal/identity"
	"barber-reservation-api/internal/middleware"
	"barber-reservation-api/internal/notify"
	"barber-reservation-api/internal/slogx"
	"barber-reservation-api/internal/store/driver"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := slogx.New(slogx.Config{
		Service: "barber-reservation-api",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	st, err := driver.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("store ready", "driver", cfg.DBDriver)

	// notifications
	sinks := []notify.Sink{notify.LogSink{Log: log}}
	if cfg.RedisURL != "" {
		rdb, err := notify.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sinks = append(sinks, notify.NewRedisSink(rdb, notify.Channel))
		log.Info("publishing confirmations", "channel", notify.Channel)
	}
	dispatcher := notify.NewDispatcher(log, 0, sinks...)
	defer dispatcher.Close()

	var verifier captcha.Verifier = captcha.Noop{}
	if cfg.RecaptchaSecret != "" {
		verifier = captcha.NewRecaptcha(cfg.RecaptchaSecret)
	} else {
		log.Warn("captcha verification disabled")
	}

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := admins.New(st.Admins(), tokens, log)
	bookings := booking.NewController(st,
		booking.WithLogger(log),
		booking.WithNotifier(dispatcher),
	)

	if n, err := accounts.Count(ctx); err == nil && n == 0 {
		log.Warn("no admin accounts yet; run createadmin")
	}

	rl := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	defer rl.Close()

	// grpc server
	srv := grpc.NewServer(
		grpc.ForceServerCodec(handler.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, handler.MethodLogin),
			middleware.Auth(middleware.NewAuthenticator(tokens, accounts.Exists), handler.MethodLogin),
		),
	)
	handler.RegisterAdminServer(srv, handler.New(bookings, accounts, log))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: httpapi.New(httpapi.Deps{
			Booking:           bookings,
			Admins:            accounts,
			Tokens:            tokens,
			Identity:          identity.NewResolver(cfg.CookieSecure),
			Captcha:           verifier,
			Health:            st,
			LoginLimiter:      rl,
			ClientIP:          middleware.ClientIP(cfg.TrustProxyHeaders),
			AllowRegistration: cfg.AllowRegistration,
			CORSOrigins:       cfg.CORSOrigins,
			Log:               log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("grpc listening", "port", cfg.GRPCPort)
		errc <- srv.Serve(lis)
	}()
	go func() {
		log.Info("http listening", "port", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
		log.Error("listener failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown", "err", serr)
	}
	srv.GracefulStop()
	return err
}
