package repos

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type GuestCartRepo struct{ db *sqlx.DB }

func NewGuestCartRepo(db *sqlx.DB) *GuestCartRepo { return &GuestCartRepo{db: db} }

type guestCartRow struct {
	ProductID   string  `db:"product_id"`
	ProductName string  `db:"product_name"`
	Price       float64 `db:"price"`
	ImageURL    string  `db:"image_url"`
	Stock       int     `db:"stock"`
	Qty         int     `db:"qty"`
}

// Add upserts a line for the product, summing quantities so the cart keeps
// one line per product id.
func (r *GuestCartRepo) Add(sessionID string, p domain.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}
	_, err := r.db.Exec(`
		INSERT INTO guest_cart_items(session_id,product_id,product_name,price,image_url,stock,qty,created_at)
		VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(session_id,product_id) DO UPDATE
		SET qty = guest_cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, sessionID, p.ID, p.Name, p.Price, p.ImageURL, p.Stock, qty)
	return err
}

// SetQuantity clamps to a floor of 1; removal is the only path to zero.
func (r *GuestCartRepo) SetQuantity(sessionID, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	_, err := r.db.Exec(`
		UPDATE guest_cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE session_id = ? AND product_id = ?
	`, qty, sessionID, productID)
	return err
}

// Remove deletes the line if present; removing an absent product is a no-op.
func (r *GuestCartRepo) Remove(sessionID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM guest_cart_items WHERE session_id = ? AND product_id = ?`,
		sessionID, productID)
	return err
}

func (r *GuestCartRepo) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM guest_cart_items WHERE session_id = ?`, sessionID)
	return err
}

func (r *GuestCartRepo) Items(sessionID string) ([]domain.CartItem, error) {
	rows := []guestCartRow{}
	if err := r.db.Select(&rows, `
		SELECT product_id, product_name, price, COALESCE(image_url,'') AS image_url, stock, qty
		FROM guest_cart_items WHERE session_id = ? ORDER BY created_at
	`, sessionID); err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.CartItem{
			Product: domain.Product{
				ID:       row.ProductID,
				Name:     row.ProductName,
				Price:    row.Price,
				ImageURL: row.ImageURL,
				Stock:    row.Stock,
			},
			Quantity: row.Qty,
		})
	}
	return items, nil
}
