// Package main provides a CLI tool for managing accounts: creating them
// and assigning roles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/horde/internal/config"
	"github.com/cory-johannsen/horde/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	username := flag.String("username", "", "target account username (required)")
	create := flag.String("create", "", "create the account with this password")
	role := flag.String("role", "", "role to assign: player or admin")
	flag.Parse()

	if *username == "" || (*create == "" && *role == "") {
		flag.Usage()
		os.Exit(1)
	}

	if *role != "" && !postgres.ValidRole(*role) {
		log.Fatalf("invalid role %q: must be one of player, admin", *role)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool.DB())

	if *create != "" {
		acct, err := repo.Create(ctx, *username, *create)
		if err != nil {
			log.Fatalf("creating account %q: %v", *username, err)
		}
		fmt.Fprintf(os.Stdout, "created account %s (#%d) address=%s [%s]\n",
			acct.Username, acct.ID, acct.Address, time.Since(start))
	}

	if *role != "" {
		acct, err := repo.GetByUsername(ctx, *username)
		if err != nil {
			log.Fatalf("looking up account %q: %v", *username, err)
		}
		if err := repo.SetRole(ctx, acct.ID, *role); err != nil {
			log.Fatalf("setting role: %v", err)
		}
		fmt.Fprintf(os.Stdout, "set role for %s (#%d): %s -> %s [%s]\n",
			acct.Username, acct.ID, acct.Role, *role, time.Since(start))
	}
}
