package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"

	"resto_reviews/internal/domain"
)

var dialect = goqu.Dialect("mysql")

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(r domain.Review) any {
	if r.ReviewedAt == nil {
		return nil
	}
	return r.ReviewedAt.UTC()
}
func valJSONList(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	b, _ := json.Marshal(ss)
	return string(b)
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlace(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, upsertPlaceSQL,
		p.ID,
		valStr(p.Name),
		valStr(p.City),
		valF64(p.Lat),
		valF64(p.Lng),
		valStr(p.Website),
		valF64(p.OverallRating),
		valInt64(p.TotalRatings),
		valJSON(p.RawJSON),
	)
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*14) // 14 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			valStr(rv.PlaceID),
			valStr(rv.SourceID),
			rv.BaseName,
			valStr(rv.Locality),
			valStr(rv.Author),
			valF64(rv.Rating),
			valJSONList(rv.Pros),
			valJSONList(rv.Cons),
			valStr(rv.Text),
			valTime(rv),
			valF64(rv.Lat),
			valF64(rv.Lng),
			valStr(rv.Source),
			valJSON(rv.RawJSON),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, placeID, status, reason)
	return err
}

// ListReviews returns the full flat batch in insert order. The aggregation
// layer recomputes everything per call over this batch, so there is no
// pagination here.
func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	query, qargs, err := dialect.From("reviews").
		Select("id", "place_id", "base_name", "locality", "author", "rating",
			"pros", "cons", goqu.C("text"), "reviewed_at", "lat", "lng", "source").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			placeID    sql.NullString
			locality   sql.NullString
			author     sql.NullString
			rating     sql.NullFloat64
			prosRaw    sql.RawBytes
			consRaw    sql.RawBytes
			text       sql.NullString
			reviewedAt sql.NullTime
			lat, lng   sql.NullFloat64
			source     sql.NullString
		)
		if err := rows.Scan(
			&rv.ID,
			&placeID,
			&rv.BaseName,
			&locality,
			&author,
			&rating,
			&prosRaw,
			&consRaw,
			&text,
			&reviewedAt,
			&lat,
			&lng,
			&source,
		); err != nil {
			return nil, err
		}

		if placeID.Valid {
			s := placeID.String
			rv.PlaceID = &s
		}
		if locality.Valid {
			s := locality.String
			rv.Locality = &s
		}
		if author.Valid {
			s := author.String
			rv.Author = &s
		}
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if len(prosRaw) > 0 {
			_ = json.Unmarshal(prosRaw, &rv.Pros)
		}
		if len(consRaw) > 0 {
			_ = json.Unmarshal(consRaw, &rv.Cons)
		}
		if text.Valid {
			s := text.String
			rv.Text = &s
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			rv.ReviewedAt = &t
		}
		if lat.Valid {
			f := lat.Float64
			rv.Lat = &f
		}
		if lng.Valid {
			f := lng.Float64
			rv.Lng = &f
		}
		if source.Valid {
			s := source.String
			rv.Source = &s
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListPlaceIDs(ctx context.Context) ([]string, error) {
	query, qargs, err := dialect.From("places").
		Select("id").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
