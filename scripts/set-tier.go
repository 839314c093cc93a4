package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Tier     string `json:"tier"`
}

// set-tier moves an account between the free and paid tiers. There is no
// self-service upgrade endpoint; billing is handled out of band and an
// operator runs this after payment clears.
func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Username of the account to update")
		tier        = flag.String("tier", model.TierPaid, "Target tier (free or paid)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "-username is required")
		os.Exit(1)
	}
	if *tier != model.TierFree && *tier != model.TierPaid {
		fmt.Fprintln(os.Stderr, "invalid tier; use free or paid")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := repo.GetUserByUsername(ctx, *username)
	if err != nil {
		fmt.Fprintln(os.Stderr, "look up user:", err)
		os.Exit(1)
	}

	if err := repo.UpdateUserTier(ctx, user.ID, *tier); err != nil {
		fmt.Fprintln(os.Stderr, "update tier:", err)
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Tier:     *tier,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s is now %s\n", out.Username, out.Tier)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
