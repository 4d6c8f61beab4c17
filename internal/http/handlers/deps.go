package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/repos"
	"storefront/internal/session"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	CartHandler    *CartHandler
	AuthHandler    *AuthHandler
	OrderHandler   *OrderHandler
	ProfileHandler *ProfileHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, client *api.Client, sessions *session.Manager) *Deps {
	guestRepo := repos.NewGuestCartRepo(db)
	cartSvc := cart.NewService(guestRepo, client)

	return &Deps{
		CatalogHandler: &CatalogHandler{API: client},
		CartHandler:    &CartHandler{Cart: cartSvc, API: client, Sessions: sessions},
		AuthHandler:    &AuthHandler{Sessions: sessions, Cart: cartSvc},
		OrderHandler:   &OrderHandler{Cart: cartSvc, API: client, Sessions: sessions},
		ProfileHandler: &ProfileHandler{API: client, Sessions: sessions},
		AdminHandler:   &AdminHandler{API: client, Sessions: sessions},
	}
}
