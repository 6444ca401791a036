package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// In-memory repository fakes. They mirror the sqlite behavior the services
// depend on — uniqueness conflicts, not-found sentinels, find-or-create
// atomicity — without touching a database.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*model.User

	createErr error // forced failure for error-path tests
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) id() string {
	r.nextID++
	return fmt.Sprintf("u%d", r.nextID)
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Provider == "" && u.Email == user.Email {
			return apperror.Conflict("User already exists")
		}
	}
	user.ID = r.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindOrCreateFederated(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Provider == user.Provider && u.ProviderID == user.ProviderID {
			cp := *u
			return &cp, nil
		}
	}
	user.ID = r.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.NotFound("user", id)
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Local accounts win over federated ones sharing the email, matching
	// the store's ordering.
	var federated *model.User
	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if u.Provider == "" {
			cp := *u
			return &cp, nil
		}
		federated = u
	}
	if federated != nil {
		cp := *federated
		return &cp, nil
	}
	return nil, apperror.NotFound("user", email)
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int
	products map[string]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*model.Product)}
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = fmt.Sprintf("p%d", r.nextID)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperror.NotFound("product", id)
}

func (r *fakeProductRepo) ListProducts(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.Product
	for _, p := range r.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		matched = append(matched, *p)
	}
	total := len(matched)
	if f.Offset >= total {
		return []model.Product{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return apperror.NotFound("product", p.ID)
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperror.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

type fakeCartRepo struct {
	mu       sync.Mutex
	nextID   int
	items    map[string][]model.CartItem // keyed by user id
	products *fakeProductRepo            // for populating joined product records
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{items: make(map[string][]model.CartItem), products: products}
}

func (r *fakeCartRepo) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	r.mu.Lock()
	items, ok := r.items[userID]
	out := make([]model.CartItem, len(items))
	copy(out, items)
	r.mu.Unlock()
	if !ok || len(out) == 0 {
		return nil, apperror.NotFound("cart", userID)
	}
	if r.products != nil {
		for i := range out {
			if p, err := r.products.GetProductByID(ctx, out[i].ProductID); err == nil {
				out[i].Product = p
			}
		}
	}
	return &model.Cart{UserID: userID, Items: out, UpdatedAt: time.Now()}, nil
}

func (r *fakeCartRepo) AddCartItem(_ context.Context, userID, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			r.items[userID] = items
			return nil
		}
	}
	r.nextID++
	r.items[userID] = append(items, model.CartItem{
		ID:        fmt.Sprintf("c%d", r.nextID),
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (r *fakeCartRepo) UpdateCartItem(_ context.Context, userID, itemID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return apperror.NotFound("cart item", itemID)
}

func (r *fakeCartRepo) RemoveCartItem(_ context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	for i := range items {
		if items[i].ID == itemID {
			r.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("cart item", itemID)
}

func (r *fakeCartRepo) ClearCart(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int
	orders []model.Order
}

func newFakeOrderRepo() *fakeOrderRepo { return &fakeOrderRepo{} }

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = fmt.Sprintf("o%d", r.nextID)
	order.Status = model.OrderPending
	order.PaymentStatus = model.PaymentUnpaid
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListAllOrders(_ context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}
