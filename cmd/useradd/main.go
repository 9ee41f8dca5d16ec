// Package main provisions a dashboard user: it hashes the password, issues a
// token and stores both in the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/config"
	"github.com/atinyakov/AdminBoard/internal/db"
	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/atinyakov/AdminBoard/internal/repository"
	"github.com/atinyakov/AdminBoard/internal/service"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "useradd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, out io.Writer) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	var (
		driver    = fs.String("driver", config.DefaultDriver, "database driver: sqlite or postgres")
		dsn       = fs.String("d", config.DefaultDSN, "db address")
		username  = fs.String("u", "", "username")
		password  = fs.String("p", "", "password (or USERADD_PASSWORD)")
		privilege = fs.Int("privilege", 0, "privilege level")
		roles     = fs.String("roles", "editor", "comma-separated roles")
		name      = fs.String("name", "", "display name")
		intro     = fs.String("intro", "", "introduction")
		avatar    = fs.String("avatar", "", "avatar URL")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = getenv("USERADD_PASSWORD")
	}
	if *username == "" || *password == "" {
		return errors.New("username (-u) and password (-p) are required")
	}

	store, err := db.Open(ctx, *driver, *dsn, 1)
	if err != nil {
		return err
	}
	defer store.Close()

	users := service.NewAuthService(repository.NewUserRepository(store.DB, store.Dialect))

	info := models.UserInfo{
		Roles:        strings.Split(*roles, ","),
		Introduction: *intro,
		Avatar:       *avatar,
		Name:         *name,
	}
	if info.Name == "" {
		info.Name = *username
	}

	id, err := users.CreateUser(ctx, *username, *password, *privilege, info)
	if err != nil {
		return err
	}
	token, err := users.FindTokenByUsername(ctx, strings.TrimSpace(*username))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created user %q (id %d)\ntoken: %s\n", strings.TrimSpace(*username), id, token)
	return nil
}
