// Package cart presents one logical cart regardless of auth state. Guest
// mutations hit the local sqlite store; authenticated mutations go to the
// upstream cart API and the server's response is taken as the displayed
// cart. The two backends never act as source of truth at the same time.
package cart

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/session"
)

type Service struct {
	Guest *repos.GuestCartRepo
	API   *api.Client
}

func NewService(guest *repos.GuestCartRepo, client *api.Client) *Service {
	return &Service{Guest: guest, API: client}
}

type View struct {
	Items []domain.CartItem
	Total float64
}

func viewOf(items []domain.CartItem) View {
	total := 0.0
	for _, it := range items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return View{Items: items, Total: total}
}

func (s *Service) View(ctx context.Context, sess *session.Session) (View, error) {
	if sess.Authenticated() {
		items, err := s.API.FetchCart(ctx, sess)
		if err != nil {
			return View{}, err
		}
		return viewOf(items), nil
	}
	items, err := s.Guest.Items(sess.ID)
	if err != nil {
		return View{}, err
	}
	return viewOf(items), nil
}

func (s *Service) Add(ctx context.Context, sess *session.Session, p domain.Product, qty int) (View, error) {
	if qty < 1 {
		qty = 1
	}
	if sess.Authenticated() {
		items, err := s.API.AddCartItem(ctx, sess, p.ID, qty)
		if err != nil {
			return View{}, err
		}
		return viewOf(items), nil
	}
	if err := s.Guest.Add(sess.ID, p, qty); err != nil {
		return View{}, err
	}
	return s.View(ctx, sess)
}

func (s *Service) SetQuantity(ctx context.Context, sess *session.Session, productID string, qty int) (View, error) {
	if qty < 1 {
		qty = 1
	}
	if sess.Authenticated() {
		items, err := s.API.UpdateCartItem(ctx, sess, productID, qty)
		if err != nil {
			return View{}, err
		}
		return viewOf(items), nil
	}
	if err := s.Guest.SetQuantity(sess.ID, productID, qty); err != nil {
		return View{}, err
	}
	return s.View(ctx, sess)
}

func (s *Service) Remove(ctx context.Context, sess *session.Session, productID string) (View, error) {
	if sess.Authenticated() {
		items, err := s.API.RemoveCartItem(ctx, sess, productID)
		if err != nil {
			return View{}, err
		}
		return viewOf(items), nil
	}
	if err := s.Guest.Remove(sess.ID, productID); err != nil {
		return View{}, err
	}
	return s.View(ctx, sess)
}

func (s *Service) Clear(ctx context.Context, sess *session.Session) error {
	if sess.Authenticated() {
		return s.API.ClearCart(ctx, sess)
	}
	return s.Guest.Clear(sess.ID)
}

// Reconcile runs on the guest-to-authenticated transition: the local cart
// is dropped and the account's server-side cart becomes the displayed cart.
// Guest lines are not merged into the account cart.
func (s *Service) Reconcile(ctx context.Context, sess *session.Session) (View, error) {
	if err := s.Guest.Clear(sess.ID); err != nil {
		return View{}, err
	}
	items, err := s.API.FetchCart(ctx, sess)
	if err != nil {
		return View{}, err
	}
	return viewOf(items), nil
}
