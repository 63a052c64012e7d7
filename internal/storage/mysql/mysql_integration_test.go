//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"resto_reviews/internal/domain"
	mysqlrepo "resto_reviews/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	// default to the in-repo migrations
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("migrations dir %s is missing", dir)
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

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
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
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviews?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

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
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndList(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	place := domain.Place{
		ID:            "pid-1",
		Name:          pstr("Burger Palace"),
		City:          pstr("Paris"),
		Lat:           pfloat(48.8566),
		Lng:           pfloat(2.3522),
		Website:       pstr("https://example.com"),
		OverallRating: pfloat(4.1),
		RawJSON:       []byte(`{}`),
	}
	if err := repo.UpsertPlace(ctx, place); err != nil {
		t.Fatalf("UpsertPlace: %v", err)
	}

	reviewed := time.Date(2023, 4, 5, 12, 30, 0, 0, time.UTC)
	r1 := domain.Review{
		PlaceID:    pstr("pid-1"),
		SourceID:   pstr("s-1"),
		BaseName:   "Burger Palace",
		Locality:   pstr("Paris"),
		Author:     pstr("Ana"),
		Rating:     pfloat(5),
		Pros:       []string{"fast", "clean"},
		Text:       pstr("…"),
		ReviewedAt: &reviewed,
		Lat:        pfloat(48.8566),
		Lng:        pfloat(2.3522),
		Source:     pstr("places"),
		RawJSON:    []byte(`{}`),
	}
	r2 := domain.Review{
		PlaceID:  pstr("pid-1"),
		SourceID: pstr("s-2"),
		BaseName: "Burger Palace",
		Locality: pstr("Paris"),
		Author:   pstr("Bo"),
		Rating:   pfloat(3),
		Cons:     []string{"slow"},
		RawJSON:  []byte(`{}`),
	}
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Upsert again with the same source ids; must not duplicate.
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("re-UpsertReviews: %v", err)
	}

	got, err := repo.ListReviews(ctx)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(got))
	}
	if got[0].BaseName != "Burger Palace" || got[0].Rating == nil || *got[0].Rating != 5 {
		t.Fatalf("unexpected first review: %+v", got[0])
	}
	if len(got[0].Pros) != 2 || got[0].Pros[0] != "fast" {
		t.Fatalf("pros round-trip: %v", got[0].Pros)
	}
	if got[0].ReviewedAt == nil || !got[0].ReviewedAt.Equal(reviewed) {
		t.Fatalf("reviewed_at round-trip: %v", got[0].ReviewedAt)
	}
	if got[1].ReviewedAt != nil {
		t.Fatalf("absent timestamp must stay nil")
	}

	ids, err := repo.ListPlaceIDs(ctx)
	if err != nil {
		t.Fatalf("ListPlaceIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "pid-1" {
		t.Fatalf("place ids: %v", ids)
	}

	if err := repo.LogMiss(ctx, "gone", 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, "gone", 403, "inactive"); err != nil {
		t.Fatalf("LogMiss update: %v", err)
	}
}
