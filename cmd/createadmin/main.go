// Command createadmin bootstraps an admin account in the configured store.
//
//	createadmin -username alice -password s3cret!
//	ADMIN_PASSWORD=s3cret! createadmin -username alice
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"barber-reservation-api/internal/admins"
	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/config"
	"barber-reservation-api/internal/slogx"
	"barber-reservation-api/internal/store/driver"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password (default $ADMIN_PASSWORD)")
	flag.Parse()

	if err := run(*username, *password); err != nil {
		fmt.Fprintln(os.Stderr, "createadmin:", err)
		os.Exit(1)
	}
}

func run(username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if username == "" || password == "" {
		return errors.New("-username and -password (or ADMIN_PASSWORD) are required")
	}

	log := slogx.New(slogx.Config{
		Service: "createadmin",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  os.Stderr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := driver.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := admins.New(st.Admins(), auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), log)
	a, err := svc.Create(ctx, username, password)
	if errors.Is(err, admins.ErrUsernameTaken) {
		return fmt.Errorf("admin %q already exists", username)
	}
	if err != nil {
		return err
	}
	fmt.Printf("created admin %q (id %d)\n", a.Username, a.ID)
	return nil
}
