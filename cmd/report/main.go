package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"resto_reviews/internal/adapters/observability"
	"resto_reviews/internal/analytics"
	"resto_reviews/internal/shared"
	mysqlrepo "resto_reviews/internal/storage/mysql"
)

// report renders the aggregates into an xlsx workbook, one sheet per view.
func main() {
	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	out := "report.xlsx"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	repo := mysqlrepo.New(db)
	revs, err := repo.ListReviews(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("loading reviews failed")
	}
	b := analytics.Disambiguate(revs)
	log.Info().Int("reviews", len(b.Records)).Msg("dataset loaded")

	f := excelize.NewFile()
	defer f.Close()

	writeSummary(f, b)
	writeTokens(f, "Pros", analytics.TopTokens(b, analytics.FieldPros))
	writeTokens(f, "Cons", analytics.TopTokens(b, analytics.FieldCons))
	writeMonthly(f, analytics.MonthlySeries(b))

	if err := f.SaveAs(out); err != nil {
		log.Fatal().Err(err).Str("path", out).Msg("saving workbook failed")
	}
	log.Info().Str("path", out).Msg("report written")
}

func writeSummary(f *excelize.File, b analytics.Batch) {
	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)
	setRow(f, sheet, 1, "Restaurant", "Average Rating", "Reviews")

	avgs := analytics.AverageRatings(b)
	counts := map[string]int{}
	for _, r := range b.Records {
		counts[r.DisplayKey]++
	}
	keys := make([]string, 0, len(avgs))
	for k := range avgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		setRow(f, sheet, i+2, k, avgs[k], counts[k])
	}
}

func writeTokens(f *excelize.File, sheet string, toks []analytics.TokenCount) {
	f.NewSheet(sheet)
	setRow(f, sheet, 1, "Token", "Count")
	for i, tc := range toks {
		setRow(f, sheet, i+2, tc.Token, tc.Count)
	}
}

func writeMonthly(f *excelize.File, ts analytics.TimeSeries) {
	const sheet = "Monthly"
	f.NewSheet(sheet)
	setRow(f, sheet, 1, "Month", "Reviews", "Average Rating")
	for i, label := range ts.Labels {
		setRow(f, sheet, i+2, label, ts.ReviewCounts[i], ts.AverageRatings[i])
	}
}

func setRow(f *excelize.File, sheet string, row int, vals ...any) {
	for i, v := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			log.Fatal().Err(err).Msg("cell name")
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			log.Fatal().Err(err).Str("cell", fmt.Sprintf("%s!%s", sheet, cell)).Msg("set cell")
		}
	}
}
