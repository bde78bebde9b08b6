package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/davranaff/coffee/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var testLogger = zerolog.Nop()

func missing(table string) error {
	return fmt.Errorf("table:%s: %w", table, pgx.ErrNoRows)
}

// memDB is an in-memory stand-in for the Postgres schema. memTx snapshots it
// and restores the snapshot when the transaction function fails.
type memDB struct {
	seq int64
	now time.Time

	users      map[int64]model.User
	categories map[int64]model.Category
	products   map[int64]model.Product
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	sessions   map[int64]model.ChatSession
	messages   map[int64]model.ChatMessage
	locations  map[int64]model.CoffeeShopLocation
	static     map[string]model.StaticInfo

	adjustStockErr error
}

func newMemDB() *memDB {
	return &memDB{
		now:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		users:      map[int64]model.User{},
		categories: map[int64]model.Category{},
		products:   map[int64]model.Product{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		sessions:   map[int64]model.ChatSession{},
		messages:   map[int64]model.ChatMessage{},
		locations:  map[int64]model.CoffeeShopLocation{},
		static:     map[string]model.StaticInfo{},
	}
}

func (db *memDB) base() model.Base {
	db.seq++
	db.now = db.now.Add(time.Second)
	return model.Base{ID: db.seq, CreatedAt: db.now, UpdatedAt: db.now}
}

func (db *memDB) touch() time.Time {
	db.now = db.now.Add(time.Second)
	return db.now
}

func (db *memDB) snapshot() *memDB {
	c := *db
	c.users = maps.Clone(db.users)
	c.categories = maps.Clone(db.categories)
	c.products = maps.Clone(db.products)
	c.carts = maps.Clone(db.carts)
	c.cartItems = maps.Clone(db.cartItems)
	c.orders = make(map[int64]model.Order, len(db.orders))
	for id, o := range db.orders {
		o.Items = append([]model.OrderItem(nil), o.Items...)
		c.orders[id] = o
	}
	c.sessions = maps.Clone(db.sessions)
	c.messages = maps.Clone(db.messages)
	c.locations = maps.Clone(db.locations)
	c.static = maps.Clone(db.static)
	return &c
}

type memTx struct {
	db    *memDB
	calls int

	// commitErr, when set, makes every commit fail after fn succeeded.
	commitErr error
}

func (t *memTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	saved := t.db.snapshot()
	if err := fn(ctx); err != nil {
		*t.db = *saved
		return err
	}
	if t.commitErr != nil {
		*t.db = *saved
		return t.commitErr
	}
	return nil
}

// ---- users ----

type memUsers struct{ db *memDB }

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, missing("users")
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, missing("users")
}

func (r memUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	u := *user
	u.Base = r.db.base()
	r.db.users[u.ID] = u
	return &u, nil
}

func (r memUsers) Update(_ context.Context, id int64, upd model.UserUpdate) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, missing("users")
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = upd.Phone
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = r.db.touch()
	r.db.users[id] = u
	return &u, nil
}

func (r memUsers) MarkVerified(_ context.Context, id int64) error {
	u, ok := r.db.users[id]
	if !ok {
		return missing("users")
	}
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationCodeExpiresAt = nil
	r.db.users[id] = u
	return nil
}

func (r memUsers) Promote(_ context.Context, id int64, role model.Role, hash string) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, missing("users")
	}
	u.Role, u.PasswordHash, u.IsActive, u.IsVerified = role, hash, true, true
	r.db.users[id] = u
	return &u, nil
}

func (r memUsers) List(_ context.Context, offset, limit int) ([]model.User, error) {
	var out []model.User
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (r memUsers) DeleteUnverifiedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, u := range r.db.users {
		if !u.IsVerified && u.CreatedAt.Before(cutoff) {
			delete(r.db.users, id)
			n++
		}
	}
	return n, nil
}

// ---- products ----

type memProducts struct{ db *memDB }

func (r memProducts) ListActiveCategories(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.db.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProducts) GetCategory(_ context.Context, id int64) (*model.Category, error) {
	c, ok := r.db.categories[id]
	if !ok {
		return nil, missing("categories")
	}
	return &c, nil
}

func (r memProducts) CreateCategory(_ context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	c := model.Category{Base: r.db.base(), Name: req.Name, Description: req.Description, IsActive: req.IsActive == nil || *req.IsActive}
	r.db.categories[c.ID] = c
	return &c, nil
}

func (r memProducts) List(_ context.Context, f model.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.db.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.IsAvailable != nil && p.IsAvailable != *f.IsAvailable {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), nil
}

func (r memProducts) Get(_ context.Context, id int64) (*model.Product, error) {
	p, ok := r.db.products[id]
	if !ok {
		return nil, missing("products")
	}
	return &p, nil
}

func (r memProducts) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return r.Get(ctx, id)
}

func (r memProducts) Create(_ context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	p := model.Product{
		Base:        r.db.base(),
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
		CategoryID:  req.CategoryID,
	}
	r.db.products[p.ID] = p
	return &p, nil
}

func (r memProducts) Update(_ context.Context, req *model.UpdateProductRequest) (*model.Product, error) {
	p, ok := r.db.products[req.ID]
	if !ok {
		return nil, missing("products")
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	r.db.products[p.ID] = p
	return &p, nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	if _, ok := r.db.products[id]; !ok {
		return missing("products")
	}
	delete(r.db.products, id)
	return nil
}

func (r memProducts) AdjustStock(_ context.Context, id int64, delta int) error {
	if r.db.adjustStockErr != nil {
		return r.db.adjustStockErr
	}
	p, ok := r.db.products[id]
	if !ok {
		return missing("products")
	}
	if p.Stock+delta < 0 {
		return errors.New("check constraint products_stock_check violated")
	}
	p.Stock += delta
	r.db.products[id] = p
	return nil
}

// ---- carts ----

type memCarts struct{ db *memDB }

func (r memCarts) GetByUserID(_ context.Context, userID int64) (*model.Cart, error) {
	for _, c := range r.db.carts {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, missing("carts")
}

func (r memCarts) GetOrCreate(ctx context.Context, userID int64) (*model.Cart, error) {
	if c, err := r.GetByUserID(ctx, userID); err == nil {
		return c, nil
	}
	c := model.Cart{Base: r.db.base(), UserID: userID}
	r.db.carts[c.ID] = c
	return &c, nil
}

func (r memCarts) ListItems(_ context.Context, cartID int64, availableOnly bool) ([]model.CartItem, error) {
	var out []model.CartItem
	for _, item := range r.db.cartItems {
		if item.CartID != cartID {
			continue
		}
		p := r.db.products[item.ProductID]
		if availableOnly && !p.IsAvailable {
			continue
		}
		item.Product = &p
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCarts) GetItem(_ context.Context, cartID, itemID int64) (*model.CartItem, error) {
	item, ok := r.db.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return nil, missing("cart_items")
	}
	return &item, nil
}

func (r memCarts) GetItemByProduct(_ context.Context, cartID, productID int64) (*model.CartItem, error) {
	for _, item := range r.db.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, missing("cart_items")
}

func (r memCarts) AddItem(_ context.Context, cartID, productID int64, quantity int) (*model.CartItem, error) {
	item := model.CartItem{Base: r.db.base(), CartID: cartID, ProductID: productID, Quantity: quantity}
	r.db.cartItems[item.ID] = item
	return &item, nil
}

func (r memCarts) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) (*model.CartItem, error) {
	item, ok := r.db.cartItems[itemID]
	if !ok {
		return nil, missing("cart_items")
	}
	item.Quantity = quantity
	r.db.cartItems[itemID] = item
	return &item, nil
}

func (r memCarts) DeleteItem(_ context.Context, itemID int64) error {
	if _, ok := r.db.cartItems[itemID]; !ok {
		return missing("cart_items")
	}
	delete(r.db.cartItems, itemID)
	return nil
}

func (r memCarts) Clear(_ context.Context, cartID int64) error {
	for id, item := range r.db.cartItems {
		if item.CartID == cartID {
			delete(r.db.cartItems, id)
		}
	}
	return nil
}

// ---- orders ----

type memOrders struct{ db *memDB }

func (r memOrders) Create(_ context.Context, order *model.Order) (*model.Order, error) {
	o := *order
	o.Base = r.db.base()
	o.Items = nil
	for _, item := range order.Items {
		item.Base = r.db.base()
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	r.db.orders[o.ID] = o
	return &o, nil
}

func (r memOrders) Get(_ context.Context, id int64) (*model.Order, error) {
	o, ok := r.db.orders[id]
	if !ok {
		return nil, missing("orders")
	}
	return &o, nil
}

func (r memOrders) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.Get(ctx, id)
}

func (r memOrders) sorted(keep func(model.Order) bool) []model.Order {
	var out []model.Order
	for _, o := range r.db.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memOrders) ListByUser(_ context.Context, userID int64, offset, limit int) ([]model.Order, error) {
	return page(r.sorted(func(o model.Order) bool { return o.UserID == userID }), offset, limit), nil
}

func (r memOrders) ListAll(_ context.Context, status *model.OrderStatus, offset, limit int) ([]model.Order, error) {
	return page(r.sorted(func(o model.Order) bool { return status == nil || o.Status == *status }), offset, limit), nil
}

func (r memOrders) UpdateStatus(_ context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	o, ok := r.db.orders[id]
	if !ok {
		return nil, missing("orders")
	}
	o.Status = status
	o.UpdatedAt = r.db.touch()
	r.db.orders[id] = o
	return &o, nil
}

func (r memOrders) ListStaleIDs(_ context.Context, status model.OrderStatus, before time.Time) ([]int64, error) {
	var ids []int64
	for _, o := range r.db.orders {
		if o.Status == status && o.UpdatedAt.Before(before) {
			ids = append(ids, o.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ---- chat ----

type memChat struct{ db *memDB }

func (r memChat) GetSession(_ context.Context, id int64) (*model.ChatSession, error) {
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, missing("chat_sessions")
	}
	return &s, nil
}

func (r memChat) GetActiveSessionByUser(_ context.Context, userID int64) (*model.ChatSession, error) {
	var found *model.ChatSession
	for _, s := range r.db.sessions {
		if s.UserID == userID && s.IsActive && (found == nil || s.ID > found.ID) {
			s := s
			found = &s
		}
	}
	if found == nil {
		return nil, missing("chat_sessions")
	}
	return found, nil
}

func (r memChat) CreateSession(_ context.Context, userID int64) (*model.ChatSession, error) {
	s := model.ChatSession{Base: r.db.base(), UserID: userID, IsActive: true}
	r.db.sessions[s.ID] = s
	return &s, nil
}

func (r memChat) ListActiveSessions(_ context.Context) ([]model.ChatSession, error) {
	var out []model.ChatSession
	for _, s := range r.db.sessions {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memChat) CloseSession(_ context.Context, id int64) (*model.ChatSession, error) {
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, missing("chat_sessions")
	}
	s.IsActive = false
	r.db.sessions[id] = s
	return &s, nil
}

func (r memChat) TouchSession(_ context.Context, id int64) error {
	s := r.db.sessions[id]
	s.UpdatedAt = r.db.touch()
	r.db.sessions[id] = s
	return nil
}

func (r memChat) CreateMessage(_ context.Context, sessionID, senderID int64, content string) (*model.ChatMessage, error) {
	m := model.ChatMessage{Base: r.db.base(), SessionID: sessionID, SenderID: senderID, Content: content}
	r.db.messages[m.ID] = m
	return &m, nil
}

func (r memChat) sessionMessages(sessionID int64) []model.ChatMessage {
	var out []model.ChatMessage
	for _, m := range r.db.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memChat) ListMessages(_ context.Context, sessionID int64, offset, limit int) ([]model.ChatMessage, error) {
	return page(r.sessionMessages(sessionID), offset, limit), nil
}

func (r memChat) LastMessages(_ context.Context, ids []int64, n int) (map[int64][]model.ChatMessage, error) {
	out := map[int64][]model.ChatMessage{}
	for _, id := range ids {
		all := r.sessionMessages(id)
		if len(all) > n {
			all = all[len(all)-n:]
		}
		if len(all) > 0 {
			out[id] = all
		}
	}
	return out, nil
}

func (r memChat) CountUnread(_ context.Context, sessionID, readerID int64) (int, error) {
	n := 0
	for _, m := range r.sessionMessages(sessionID) {
		if m.SenderID != readerID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memChat) MarkRead(_ context.Context, sessionID, readerID int64) (int64, error) {
	var n int64
	for id, m := range r.db.messages {
		if m.SessionID == sessionID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			r.db.messages[id] = m
			n++
		}
	}
	return n, nil
}

// ---- info ----

type memInfo struct{ db *memDB }

func (r memInfo) ListActiveLocations(_ context.Context, city string) ([]model.CoffeeShopLocation, error) {
	var out []model.CoffeeShopLocation
	for _, l := range r.db.locations {
		if l.IsActive && (city == "" || strings.EqualFold(l.City, city)) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memInfo) GetLocation(_ context.Context, id int64) (*model.CoffeeShopLocation, error) {
	l, ok := r.db.locations[id]
	if !ok {
		return nil, missing("coffee_shop_locations")
	}
	return &l, nil
}

func (r memInfo) CreateLocation(_ context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error) {
	l := model.CoffeeShopLocation{Base: r.db.base(), Name: req.Name, Address: req.Address, City: req.City, IsActive: req.IsActive == nil || *req.IsActive}
	r.db.locations[l.ID] = l
	return &l, nil
}

func (r memInfo) UpdateLocation(_ context.Context, req *model.UpdateLocationRequest) (*model.CoffeeShopLocation, error) {
	l, ok := r.db.locations[req.ID]
	if !ok {
		return nil, missing("coffee_shop_locations")
	}
	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}
	r.db.locations[l.ID] = l
	return &l, nil
}

func (r memInfo) ListStaticInfo(_ context.Context) ([]model.StaticInfo, error) {
	var out []model.StaticInfo
	for _, s := range r.db.static {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r memInfo) GetStaticInfo(_ context.Context, key string) (*model.StaticInfo, error) {
	s, ok := r.db.static[key]
	if !ok {
		return nil, missing("static_info")
	}
	return &s, nil
}

func (r memInfo) CreateStaticInfo(_ context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	s := model.StaticInfo{Base: r.db.base(), Key: req.Key, Value: req.Value, Description: req.Description}
	r.db.static[s.Key] = s
	return &s, nil
}

func (r memInfo) UpsertStaticInfo(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	if s, ok := r.db.static[req.Key]; ok {
		s.Value, s.Description = req.Value, req.Description
		r.db.static[s.Key] = s
		return &s, nil
	}
	return r.CreateStaticInfo(ctx, req)
}

func (r memInfo) UpdateStaticInfo(_ context.Context, req *model.UpdateStaticInfoRequest) (*model.StaticInfo, error) {
	s, ok := r.db.static[req.Key]
	if !ok {
		return nil, missing("static_info")
	}
	if req.Value != nil {
		s.Value = *req.Value
	}
	if req.Description != nil {
		s.Description = req.Description
	}
	r.db.static[s.Key] = s
	return &s, nil
}

// ---- collaborators ----

type recordingNotifier struct {
	verification []string
	confirmation []email.OrderConfirmationData
	status       []email.OrderStatusData
	err          error
}

func (n *recordingNotifier) EnqueueVerificationEmail(_ context.Context, _, _, code string) error {
	n.verification = append(n.verification, code)
	return n.err
}

func (n *recordingNotifier) EnqueueOrderConfirmationEmail(_ context.Context, _ string, data email.OrderConfirmationData) error {
	n.confirmation = append(n.confirmation, data)
	return n.err
}

func (n *recordingNotifier) EnqueueOrderStatusEmail(_ context.Context, _ string, data email.OrderStatusData) error {
	n.status = append(n.status, data)
	return n.err
}

type recordingHub struct {
	events []model.ChatEvent
}

func (h *recordingHub) Publish(_ context.Context, event model.ChatEvent) error {
	h.events = append(h.events, event)
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
