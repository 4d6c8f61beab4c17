package domain

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Deleted     bool   `json:"deleted,omitempty"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Supplier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactEmail string  `json:"contactEmail"`
	ContactPhone string  `json:"contactPhone"`
	Address      Address `json:"address"`
	Deleted      bool    `json:"deleted,omitempty"`
}

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Stock    int      `json:"stock"`
	Supplier Supplier `json:"supplier"`
	Category Category `json:"category"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Deleted  bool     `json:"deleted,omitempty"`
}

// CartItem is one line of a cart: a product snapshot plus a quantity >= 1.
// At most one line exists per product id.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type OrderDetail struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CustomerRef struct {
	ID string `json:"id"`
}

type OrderRef struct {
	OrderNumber string `json:"orderNumber"`
}

type Order struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	Customer        CustomerRef   `json:"customer"`
	ShippingAddress string        `json:"shippingAddress"`
	OrderDetails    []OrderDetail `json:"orderDetails"`
	Total           float64       `json:"total"`
	Status          string        `json:"status"`
	PaymentStatus   string        `json:"paymentStatus"`
	TransactionID   string        `json:"transactionId,omitempty"`
	CreatedAt       string        `json:"createdAt"`
}

type Payment struct {
	ID            string   `json:"id"`
	Order         OrderRef `json:"order"`
	Amount        float64  `json:"amount"`
	Status        string   `json:"status"`
	TransactionID string   `json:"transactionId"`
	ErrorMessage  string   `json:"errorMessage,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

type TopProduct struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type Analytics struct {
	TotalSales  float64      `json:"totalSales"`
	OrderCount  int          `json:"orderCount"`
	TopProducts []TopProduct `json:"topProducts"`
}

type Profile struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}
