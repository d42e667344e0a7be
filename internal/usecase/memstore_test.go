package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// =====================
// メモリ上のストア（WithinTxはスナップショットで巻き戻す）
// =====================

type memState struct {
	nextID      int64
	users       map[int64]model.User
	products    map[int64]model.Product
	carts       map[int64]model.Cart
	cartItems   map[int64]model.CartItem
	orders      map[int64]model.Order
	orderItems  map[int64]model.OrderItem
	audits      []model.AuditLog
	adjustments []model.InventoryAdjustment
}

func (s memState) clone() memState {
	c := memState{
		nextID:      s.nextID,
		users:       make(map[int64]model.User, len(s.users)),
		products:    make(map[int64]model.Product, len(s.products)),
		carts:       make(map[int64]model.Cart, len(s.carts)),
		cartItems:   make(map[int64]model.CartItem, len(s.cartItems)),
		orders:      make(map[int64]model.Order, len(s.orders)),
		orderItems:  make(map[int64]model.OrderItem, len(s.orderItems)),
		audits:      append([]model.AuditLog(nil), s.audits...),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = v
	}
	return c
}

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState
}

func newMemStore() *memStore {
	return &memStore{st: memState{}.clone()}
}

func (s *memStore) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(memTxRepos{s}); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Users() repo.UserRepository           { return memUsers{r.s} }
func (r memTxRepos) Orders() repo.OrderRepository         { return memOrders{r.s} }
func (r memTxRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.s} }
func (r memTxRepos) Carts() repo.CartRepository           { return memCarts{r.s} }
func (r memTxRepos) CartItems() repo.CartItemRepository   { return memCarts{r.s} }
func (r memTxRepos) Inventory() repo.InventoryRepository  { return memInventory{r.s} }
func (r memTxRepos) Products() repo.ProductRepository     { return memProducts{r.s} }
func (r memTxRepos) AuditLogs() repo.AuditLogRepository   { return memAudits{r.s} }

// テスト準備用

func (s *memStore) seedUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.st.users[u.ID] = u
	return u
}

func (s *memStore) seedProduct(name string, price string, stock int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Product{
		ID:       s.id(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	s.st.products[p.ID] = p
	return p
}

func (s *memStore) stockOf(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[productID].Stock
}

func (s *memStore) setPrice(productID int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[productID]
	p.Price = decimal.RequireFromString(price)
	s.st.products[productID] = p
}

func (s *memStore) counts() (orders int, orderItems int, cartItems int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders), len(s.st.orderItems), len(s.st.cartItems)
}

func (s *memStore) auditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.st.audits...)
}

// =====================
// users
// =====================

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.st.users {
		if x.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = r.s.id()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) Update(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r memUsers) Patch(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	r.s.st.users[id] = u
	return &u, nil
}

func (r memUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = hash
	u.TokenVersion++
	r.s.st.users[id] = u
	return nil
}

func (r memUsers) IncrementTokenVersion(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.TokenVersion++
	r.s.st.users[id] = u
	return nil
}

func (r memUsers) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.users, id)
	return nil
}

// =====================
// products / inventory
// =====================

type memProducts struct{ s *memStore }

func (r memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.st.products {
		if p.IsActive || q.IncludeInactive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r memProducts) ListAll(ctx context.Context) ([]model.Product, error) {
	out, _, err := r.List(ctx, repo.ProductListQuery{IncludeInactive: true})
	return out, err
}

func (r memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.st.products[p.ID] = p
	return p, nil
}

func (r memProducts) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	r.s.st.products[id] = p
	return p, nil
}

func (r memProducts) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.IsActive = false
	r.s.st.products[id] = p
	return nil
}

type memInventory struct{ s *memStore }

func (r memInventory) SetStock(ctx context.Context, productID int64, n int64) error {
	return r.add(productID, func(cur int64) (int64, bool) { return n, true })
}

func (r memInventory) DecreaseStock(ctx context.Context, productID int64, qty int64) error {
	return r.add(productID, func(cur int64) (int64, bool) { return cur - qty, true })
}

func (r memInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	applied := false
	err := r.add(productID, func(cur int64) (int64, bool) {
		if cur < qty {
			return cur, false
		}
		applied = true
		return cur - qty, true
	})
	if err == repo.ErrNotFound {
		return false, nil
	}
	return applied, err
}

func (r memInventory) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return r.add(productID, func(cur int64) (int64, bool) { return cur + qty, true })
}

func (r memInventory) CreateAdjustment(ctx context.Context, a model.InventoryAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	r.s.st.adjustments = append(r.s.st.adjustments, a)
	return nil
}

func (r memInventory) add(productID int64, f func(cur int64) (int64, bool)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	if n, ok := f(p.Stock); ok {
		p.Stock = n
		r.s.st.products[productID] = p
	}
	return nil
}

// =====================
// carts / cart items
// =====================

type memCarts struct{ s *memStore }

func (r memCarts) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := model.Cart{ID: r.s.id(), UserID: userID, CreatedAt: time.Now()}
	r.s.st.carts[c.ID] = c
	return c, nil
}

func (r memCarts) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r memCarts) Clear(ctx context.Context, cartID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.st.cartItems {
		if it.CartID == cartID {
			delete(r.s.st.cartItems, id)
		}
	}
	return nil
}

func (r memCarts) Delete(ctx context.Context, cartID int64) error {
	if err := r.Clear(ctx, cartID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.carts, cartID)
	return nil
}

func (r memCarts) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range r.s.st.cartItems {
		if it.CartID != cartID {
			continue
		}
		if p, ok := r.s.st.products[it.ProductID]; ok {
			p := p
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCarts) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.st.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += addQty
			r.s.st.cartItems[id] = it
			return it, nil
		}
	}
	it := model.CartItem{ID: r.s.id(), CartID: cartID, ProductID: productID, Quantity: addQty}
	r.s.st.cartItems[it.ID] = it
	return it, nil
}

func (r memCarts) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.cartItems[id]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.s.st.cartItems[id] = it
	return nil
}

func (r memCarts) DeleteByID(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.cartItems[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.cartItems, id)
	return nil
}

func (r memCarts) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.cartItems[id]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r memCarts) IsOwnedByUser(ctx context.Context, id int64, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.cartItems[id]
	if !ok {
		return false, nil
	}
	return r.s.st.carts[it.CartID].UserID == userID, nil
}

// =====================
// orders
// =====================

type memOrders struct{ s *memStore }

func (r memOrders) FindByID(ctx context.Context, id int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64, skip int, limit int) ([]model.Order, int64, error) {
	return r.ListAdmin(ctx, repo.AdminOrderListFilter{Skip: skip, Limit: limit, UserID: &userID})
}

func (r memOrders) Create(ctx context.Context, o model.Order) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	o.Items = nil
	r.s.st.orders[o.ID] = o
	return o.ID, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	r.s.st.orders[id] = o
	return nil
}

func (r memOrders) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.orders[id]; !ok {
		return repo.ErrNotFound
	}
	for itemID, it := range r.s.st.orderItems {
		if it.OrderID == id {
			delete(r.s.st.orderItems, itemID)
		}
	}
	delete(r.s.st.orders, id)
	return nil
}

func (r memOrders) DeleteByUserID(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	var ids []int64
	for id, o := range r.s.st.orders {
		if o.UserID == userID {
			ids = append(ids, id)
		}
	}
	r.s.mu.Unlock()

	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Order
	for _, o := range r.s.st.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		all = append(all, o)
	}
	// 新しい順（同時刻ならID降順）
	sort.Slice(all, func(i, j int) bool {
		if all[i].OrderDate.Equal(all[j].OrderDate) {
			return all[i].ID > all[j].ID
		}
		return all[i].OrderDate.After(all[j].OrderDate)
	})
	total := int64(len(all))
	if f.Skip >= len(all) {
		return []model.Order{}, total, nil
	}
	all = all[f.Skip:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

type memOrderItems struct{ s *memStore }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range items {
		it := items[i]
		it.ID = r.s.id()
		it.OrderID = orderID
		it.Product = nil
		items[i].ID = it.ID
		r.s.st.orderItems[it.ID] = it
	}
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.OrderItem{}
	for _, it := range r.s.st.orderItems {
		if it.OrderID != orderID {
			continue
		}
		if p, ok := r.s.st.products[it.ProductID]; ok {
			p := p
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =====================
// audit logs
// =====================

type memAudits struct{ s *memStore }

func (r memAudits) Create(ctx context.Context, log model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = r.s.id()
	r.s.st.audits = append(r.s.st.audits, log)
	return nil
}

func (r memAudits) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.AuditLog(nil), r.s.st.audits...), nil
}
