//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"listing_finder/internal/domain"
	mysqlrepo "listing_finder/internal/storage/mysql"
)

// ---------- small helpers ----------
func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndList(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=listings",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "listings")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	listed := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	seed := []domain.Listing{
		{
			ID:          2,
			Title:       "Luxury Beachfront Villa",
			Location:    "Malibu, California",
			Description: "Private beach access",
			Price:       "$3,850,000",
			Bedrooms:    5,
			Bathrooms:   6,
			Features:    []string{"pool", "garage"},
			ListedDate:  &listed,
			Lat:         pfloat(34.0259),
			Lon:         pfloat(-118.7798),
			Type:        domain.TypeVilla,
			AreaSqft:    pint(4500),
		},
		{
			ID:        1,
			Title:     "Modern Apartment",
			Location:  "Downtown Manhattan",
			Price:     "$1,250,000",
			Bedrooms:  2,
			Bathrooms: 2.5,
			Type:      domain.TypeApartment,
		},
	}
	for _, l := range seed {
		if err := repo.UpsertListing(ctx, l); err != nil {
			t.Fatalf("UpsertListing: %v", err)
		}
	}

	// upsert again with a new price
	seed[1].Price = "$1,200,000"
	if err := repo.UpsertListing(ctx, seed[1]); err != nil {
		t.Fatalf("UpsertListing (update): %v", err)
	}

	got, err := repo.GetListing(ctx, 2)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Title != "Luxury Beachfront Villa" || !got.HasFeature("pool") || got.Type != domain.TypeVilla {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if got.ListedDate == nil || !got.ListedDate.Equal(listed) {
		t.Fatalf("unexpected listed date: %v", got.ListedDate)
	}
	if got.AreaSqft == nil || *got.AreaSqft != 4500 {
		t.Fatalf("unexpected area: %v", got.AreaSqft)
	}

	all, err := repo.ListListings(ctx)
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[0].Price != "$1,200,000" || all[0].Bathrooms != 2.5 {
		t.Fatalf("unexpected listings: %+v", all)
	}
	if all[0].Features != nil || all[0].Lat != nil {
		t.Fatalf("expected empty optional fields, got %+v", all[0])
	}

	if _, err := repo.GetListing(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.LogMiss(ctx, 404, 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, 404, 403, "inactive"); err != nil {
		t.Fatalf("LogMiss (repeat): %v", err)
	}
}
