// Command seed fills the store with the reference companies and a generated
// price history for each, so the API can serve data offline.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"findata/internal/calculator"
	"findata/internal/config"
	"findata/internal/reference"
	"findata/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.SQLitePath, "SQLite database path")
	days := flag.Int("days", 90, "days of history per symbol")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(*seed, *seed))
	end := time.Now().AddDate(0, 0, -1)

	log.Printf("[INFO] seeding %s with %d days per symbol", *dbPath, *days)
	total := 0
	for _, c := range reference.All() {
		if err := st.UpsertCompany(ctx, c.Profile()); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}

		derived, err := calculator.Derive(reference.Walk(c.BasePrice, *days, end, rng))
		if err != nil {
			log.Fatalf("[FATAL] derive %s: %v", c.Symbol, err)
		}
		n, err := st.UpsertBars(ctx, c.Symbol, derived)
		if err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		total += n
		log.Printf("[INFO] %s: added %d bars", c.Symbol, n)
	}
	log.Printf("[INFO] seed done: %d companies, %d bars", len(reference.All()), total)
}
