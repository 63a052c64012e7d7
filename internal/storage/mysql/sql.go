package mysql

const upsertPlaceSQL = `
INSERT INTO places
  (id, name, city, lat, lng, website, overall_rating, total_ratings, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name           = VALUES(name),
  city           = VALUES(city),
  lat            = VALUES(lat),
  lng            = VALUES(lng),
  website        = VALUES(website),
  overall_rating = VALUES(overall_rating),
  total_ratings  = VALUES(total_ratings),
  raw            = VALUES(raw),
  updated_at     = CURRENT_TIMESTAMP
`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (place_id, source_id, base_name, locality, author, rating, pros, cons, `text`, reviewed_at, lat, lng, source, raw)\n" +
	"VALUES "

// COALESCE keeps the old value when the re-ingested one is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  base_name   = VALUES(base_name),\n" +
	"  locality    = COALESCE(VALUES(locality), reviews.locality),\n" +
	"  author      = COALESCE(VALUES(author), reviews.author),\n" +
	"  rating      = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  pros        = COALESCE(VALUES(pros), reviews.pros),\n" +
	"  cons        = COALESCE(VALUES(cons), reviews.cons),\n" +
	"  `text`      = COALESCE(VALUES(`text`), reviews.`text`),\n" +
	"  reviewed_at = COALESCE(VALUES(reviewed_at), reviews.reviewed_at),\n" +
	"  lat         = COALESCE(VALUES(lat), reviews.lat),\n" +
	"  lng         = COALESCE(VALUES(lng), reviews.lng),\n" +
	"  source      = COALESCE(VALUES(source), reviews.source),\n" +
	"  raw         = COALESCE(VALUES(raw), reviews.raw)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (place_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`
