package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/search"
)

var (
	routes      = flag.String("routes", "CityA:CityB,CityB:CityA,CityA:CityC", "Comma separated from:to pairs")
	startDate   = flag.String("date", time.Now().Format("2006-01-02"), "First journey date (YYYY-MM-DD)")
	days        = flag.Int("days", 7, "Number of consecutive days to generate")
	perDay      = flag.Int("per-day", 3, "Journeys per route per day")
	totalSeats  = flag.Int("seats", 40, "Seats on each bus")
	seatsPerRow = flag.Int("per-row", models.DefaultSeatsPerRow, "Seats in one row")
	seed        = flag.Int64("seed", 1, "Random seed for bus numbers and fares")
	dryRun      = flag.Bool("dry-run", false, "Show what would be generated without making changes")
	index       = flag.Bool("index", false, "Also index generated journeys into Elasticsearch")
)

type plan struct {
	routes      [][2]string
	start       models.Date
	days        int
	perDay      int
	totalSeats  int
	seatsPerRow int
	seed        int64
}

type JourneyGenerator struct {
	db    *database.DB
	repo  *repository.JourneyRepository
	index *search.ElasticsearchClient
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting journey generator...")

	p, err := parsePlan()
	if err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	requests := p.journeys()
	if *dryRun {
		for _, r := range requests {
			fmt.Printf("%s %s -> %s %s %s fare=%s seats=%d/%d\n",
				r.BusNumber, r.From, r.To, r.JourneyDate, r.StartTime, r.Fare, r.TotalSeats, r.SeatsPerRow)
		}
		slog.Info("Dry run completed", "journeys", len(requests))
		return
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	g := &JourneyGenerator{db: db, repo: repository.NewJourneyRepository(db)}
	if *index {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Error("Failed to connect to Elasticsearch", "error", err)
			os.Exit(1)
		}
		g.index = es
	}

	created, err := g.Generate(ctx, requests)
	if err != nil {
		slog.Error("Failed to generate journeys", "error", err)
		os.Exit(1)
	}

	slog.Info("Journey generation completed successfully!", "created", created)
}

func parsePlan() (plan, error) {
	start, err := models.ParseDate(*startDate)
	if err != nil {
		return plan{}, err
	}

	p := plan{
		start:       start,
		days:        *days,
		perDay:      *perDay,
		totalSeats:  *totalSeats,
		seatsPerRow: *seatsPerRow,
		seed:        *seed,
	}
	p.routes, err = parseRoutes(*routes)
	return p, err
}

func parseRoutes(s string) ([][2]string, error) {
	var out [][2]string
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("route %q must look like from:to", pair)
		}
		out = append(out, [2]string{strings.TrimSpace(from), strings.TrimSpace(to)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no routes given")
	}
	return out, nil
}

// journeys is deterministic for a given seed.
func (p plan) journeys() []models.CreateJourneyRequest {
	rng := rand.New(rand.NewSource(p.seed))

	var out []models.CreateJourneyRequest
	for d := 0; d < p.days; d++ {
		date := models.DateOf(p.start.AddDate(0, 0, d))
		for _, route := range p.routes {
			for i := 0; i < p.perDay; i++ {
				// отправления с 06:00 с шагом в 3 часа
				hour := (6 + 3*i) % 24
				out = append(out, models.CreateJourneyRequest{
					BusNumber:   fmt.Sprintf("BUS-%03d", rng.Intn(1000)),
					From:        route[0],
					To:          route[1],
					JourneyDate: date,
					StartTime:   fmt.Sprintf("%02d:00:00", hour),
					Fare:        fmt.Sprintf("%d.00", 50+rng.Intn(150)),
					TotalSeats:  p.totalSeats,
					SeatsPerRow: p.seatsPerRow,
				})
			}
		}
	}
	return out
}

// Generate inserts the journeys and returns how many rows were created.
// Invalid requests are skipped with a log line.
func (g *JourneyGenerator) Generate(ctx context.Context, requests []models.CreateJourneyRequest) (int, error) {
	created := 0
	for _, r := range requests {
		if err := r.Validate(); err != nil {
			slog.Warn("Skipping invalid journey", "bus_number", r.BusNumber, "error", err)
			continue
		}

		j := r.Journey()
		if err := g.repo.Create(ctx, nil, j); err != nil {
			return created, fmt.Errorf("failed to create journey %s: %w", r.BusNumber, err)
		}
		created++

		if g.index != nil {
			if err := g.index.IndexJourney(ctx, j); err != nil {
				slog.Error("Failed to index journey", "journey_id", j.ID, "error", err)
			}
		}
	}

	if g.index != nil && created > 0 {
		if err := g.index.Refresh(ctx); err != nil {
			slog.Warn("Failed to refresh index", "error", err)
		}
	}
	return created, nil
}
