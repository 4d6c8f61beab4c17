package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the local sqlite store. The gateway owns no catalog data;
// the only durable state is the guest cart, keyed by the sid cookie.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Guest cart lines, one per (session, product). Product columns are a
-- snapshot taken at add time so the cart renders without upstream calls.
CREATE TABLE IF NOT EXISTS guest_cart_items(
  session_id    TEXT NOT NULL,
  product_id    TEXT NOT NULL,
  product_name  TEXT NOT NULL,
  price         NUMERIC NOT NULL,
  image_url     TEXT,
  stock         INTEGER NOT NULL DEFAULT 0,
  qty           INTEGER NOT NULL CHECK (qty >= 1),
  created_at    TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at    TEXT,
  PRIMARY KEY (session_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_guest_cart_session ON guest_cart_items(session_id);
`
	_, err := db.Exec(schema)
	return err
}
