package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
	"github.com/tendant/simple-catalog/pkg/catalog/config"
	"github.com/tendant/simple-catalog/pkg/catalog/scan"
)

const usage = `Simple Catalog Admin CLI

Maintenance tool for the lesson catalog. It reads the same environment as
the server.

USAGE:
  catalog-admin <command> [options]

COMMANDS:
  migrate   Apply the database schema
  map       Print the full catalog tree
  photos    List uploaded photos, newest first
  covers    List covers that point at missing photos
  prune     Remove uploaded photos no cover references
  token     Mint a signed access token (requires JWT_SECRET)
  env       Describe the supported environment variables

OPTIONS:
  --json               Output as JSON (map, photos, covers)
  --dry-run            Report without removing (prune only)
  --min-age=<duration> Keep photos uploaded more recently (prune only, default: 10m)
  --sub=<subject>      Token subject (token only, default: admin)
  --ttl=<duration>     Token lifetime (token only, default: 24h)

  Configuration can be loaded from a .env file in the current directory.
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "help", "--help", "-h":
		fmt.Print(usage + "\n")
		return
	case "env":
		fmt.Println(config.Usage())
		return
	}

	opts := parseOptions(os.Args[2:])

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if command == "token" {
		handleToken(cfg, opts)
		return
	}

	ctx := context.Background()
	components, err := cfg.Build(ctx)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	defer components.Close(ctx)

	switch command {
	case "migrate":
		if err := components.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		fmt.Printf("Schema applied (%s)\n", cfg.DatabaseType)
	case "map":
		handleMap(ctx, components.Service, opts.json)
	case "photos":
		handlePhotos(ctx, components.Uploads, opts.json)
	case "covers":
		handleCovers(ctx, scan.New(components.Service, components.Uploads), opts.json)
	case "prune":
		handlePrune(ctx, scan.New(components.Service, components.Uploads), opts.dryRun, opts.minAge)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

type options struct {
	json    bool
	dryRun  bool
	minAge  time.Duration
	subject string
	ttl     time.Duration
}

func parseOptions(args []string) options {
	opts := options{subject: "admin", ttl: 24 * time.Hour, minAge: scan.DefaultPruneMinAge}
	for _, arg := range args {
		key, value := parseFlag(arg)
		switch key {
		case "json":
			opts.json = true
		case "dry-run":
			opts.dryRun = true
		case "sub":
			opts.subject = value
		case "min-age":
			if d, err := time.ParseDuration(value); err == nil && d >= 0 {
				opts.minAge = d
			}
		case "ttl":
			if d, err := time.ParseDuration(value); err == nil && d > 0 {
				opts.ttl = d
			}
		}
	}
	return opts
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleToken(cfg *config.ServerConfig, opts options) {
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required to mint tokens")
	}
	now := time.Now()
	_, raw, err := auth.NewJWTAuth(cfg.JWTSecret).Encode(map[string]interface{}{
		"jti": uuid.NewString(),
		"sub": opts.subject,
		"iat": now.Unix(),
		"exp": now.Add(opts.ttl).Unix(),
	})
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(raw)
}

func handleMap(ctx context.Context, svc catalog.Service, useJSON bool) {
	tree, err := svc.GetCatalogMap(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog map: %v", err)
	}

	if useJSON {
		printJSON(tree)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tID\tTITLE\tUPDATED\n")
	for _, c := range tree {
		fmt.Fprintf(w, "category\t%s\t%s\t%s\n", c.ID, c.Title, formatTime(c.UpdatedAt))
		for _, l := range c.Lessons {
			fmt.Fprintf(w, "  lesson\t%s\t%s\t%s\n", l.ID, l.Title, formatTime(l.UpdatedAt))
		}
		for _, s := range c.Series {
			fmt.Fprintf(w, "  series\t%s\t%s\t%s\n", s.ID, s.Title, formatTime(s.UpdatedAt))
			for _, sl := range s.SeriesLessons {
				fmt.Fprintf(w, "    lesson\t%s\t%s\t%s\n", sl.ID, sl.Title, formatTime(sl.UpdatedAt))
			}
		}
	}
	w.Flush()
}

func handlePhotos(ctx context.Context, uploads *catalog.Uploads, useJSON bool) {
	photos, err := uploads.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list photos: %v", err)
	}

	if useJSON {
		printJSON(photos)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tCREATED\n")
	for _, p := range photos {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, formatTime(p.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d\n", len(photos))
}

func handleCovers(ctx context.Context, scanner *scan.Scanner, useJSON bool) {
	dangling, err := scanner.Dangling(ctx)
	if err != nil {
		log.Fatalf("Failed to scan covers: %v", err)
	}

	if useJSON {
		printJSON(dangling)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tID\tCATEGORY\tSERIES\tCOVER\n")
	for _, ref := range dangling {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ref.Entity, ref.ID, dash(ref.CategoryID), dash(ref.SeriesID), ref.Cover)
	}
	w.Flush()
	fmt.Printf("\nDangling covers: %d\n", len(dangling))
}

func handlePrune(ctx context.Context, scanner *scan.Scanner, dryRun bool, minAge time.Duration) {
	removed, err := scanner.PruneOrphans(ctx, dryRun, minAge)
	for _, name := range removed {
		if dryRun {
			fmt.Printf("[DRY-RUN] Would remove: %s\n", name)
		} else {
			fmt.Printf("Removed: %s\n", name)
		}
	}
	if err != nil {
		log.Fatalf("Failed to prune photos: %v", err)
	}
	fmt.Printf("\nTotal: %d\n", len(removed))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(data))
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
