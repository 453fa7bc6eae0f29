package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"app/internal/model"
)

// In-memory fakes for the repository and billing interfaces.

type fakeUserRepo struct {
	users          map[string]*model.User
	statusUpdates  int
	lastStatus     string
	lastStatusUser string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) UpsertUser(ctx context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) UpdateStripeInfo(ctx context.Context, userID, customerID, subscriptionID string) error {
	if u := r.users[userID]; u != nil {
		u.StripeCustomerID = &customerID
		u.StripeSubscriptionID = &subscriptionID
	}
	return nil
}

func (r *fakeUserRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	if u := r.users[userID]; u != nil {
		u.StripeCustomerID = &customerID
	}
	return nil
}

func (r *fakeUserRepo) UpdateSubscriptionStatus(ctx context.Context, userID, status string, endDate *time.Time) error {
	r.statusUpdates++
	r.lastStatus = status
	r.lastStatusUser = userID
	if u := r.users[userID]; u != nil {
		u.SubscriptionStatus = status
		u.SubscriptionEndDate = endDate
	}
	return nil
}

type fakePostcardRepo struct {
	postcards map[string]*model.Postcard
	created   int
}

func newFakePostcardRepo() *fakePostcardRepo {
	return &fakePostcardRepo{postcards: make(map[string]*model.Postcard)}
}

func (r *fakePostcardRepo) CreatePostcard(ctx context.Context, p *model.Postcard) error {
	r.created++
	r.postcards[p.ID] = p
	return nil
}

func (r *fakePostcardRepo) GetPostcardByID(ctx context.Context, id string) (*model.Postcard, error) {
	return r.postcards[id], nil
}

func (r *fakePostcardRepo) GetPostcardsByUserID(ctx context.Context, userID string) ([]model.Postcard, error) {
	var out []model.Postcard
	for _, p := range r.postcards {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostcardRepo) DeletePostcard(ctx context.Context, id string) error {
	delete(r.postcards, id)
	return nil
}

type fakeOrderRepo struct {
	orders  map[string]*model.PostcardOrder
	created int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.PostcardOrder)}
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, o *model.PostcardOrder) error {
	r.created++
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*model.PostcardOrder, error) {
	if o, ok := r.orders[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID string) ([]model.PostcardOrder, error) {
	var out []model.PostcardOrder
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetPendingOrderByPostcard(ctx context.Context, userID, postcardID string) (*model.PostcardOrder, error) {
	for _, o := range r.orders {
		if o.UserID == userID && o.PostcardID == postcardID && o.OrderStatus == model.OrderStatusPending {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if o, ok := r.orders[id]; ok {
		o.OrderStatus = status
	}
	return nil
}

// fakeBilling hands out sequential payment intents and records lookups.
type fakeBilling struct {
	intents        map[string]*model.PaymentIntent
	intentsCreated int
	intentStatus   string
	subState       *model.SubscriptionState
	statusCalls    int
}

func newFakeBilling() *fakeBilling {
	return &fakeBilling{intents: make(map[string]*model.PaymentIntent), intentStatus: "requires_payment_method"}
}

func (b *fakeBilling) EnsureCustomer(ctx context.Context, user *model.User) (string, error) {
	return "cus_fake", nil
}

func (b *fakeBilling) CreateSubscription(ctx context.Context, user *model.User) (*model.SubscriptionCheckout, error) {
	return &model.SubscriptionCheckout{SubscriptionID: "sub_fake", ClientSecret: "cs_sub"}, nil
}

func (b *fakeBilling) SubscriptionStatus(ctx context.Context, subscriptionID string) (*model.SubscriptionState, error) {
	b.statusCalls++
	return b.subState, nil
}

func (b *fakeBilling) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	return "https://billing.example.com/portal", nil
}

func (b *fakeBilling) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*model.PaymentIntent, error) {
	b.intentsCreated++
	pi := &model.PaymentIntent{
		ID:           "pi_" + metadata["postcardId"],
		ClientSecret: "cs_" + metadata["postcardId"],
		Status:       b.intentStatus,
	}
	b.intents[pi.ID] = pi
	return pi, nil
}

func (b *fakeBilling) GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if pi, ok := b.intents[id]; ok {
		return pi, nil
	}
	return &model.PaymentIntent{ID: id, ClientSecret: "cs_" + id, Status: b.intentStatus}, nil
}

// fakeStorage records ACL and delete calls keyed by bucket key.
type fakeStorage struct {
	acls    map[string]bool
	deleted []string
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{acls: make(map[string]bool), objects: make(map[string][]byte)}
}

func (s *fakeStorage) CreateSignedUploadURL(ctx context.Context, userID, contentType string) (*model.SignedUpload, error) {
	return &model.SignedUpload{
		UploadURL:      "https://storage.example.com/bucket/private/uploads/" + userID + "/new?sig=abc",
		ObjectPath:     "private/uploads/" + userID + "/new",
		NormalizedPath: "/objects/private/uploads/" + userID + "/new",
		ExpiresAt:      time.Now().Add(15 * time.Minute),
	}, nil
}

func (s *fakeStorage) OpenObject(ctx context.Context, bucketKey string) (io.ReadCloser, string, error) {
	data, ok := s.objects[bucketKey]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func (s *fakeStorage) SetObjectACL(ctx context.Context, bucketKey string, public bool) error {
	s.acls[bucketKey] = public
	return nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, bucketKey string) error {
	s.deleted = append(s.deleted, bucketKey)
	delete(s.objects, bucketKey)
	return nil
}

type fakePublisher struct {
	topics   []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, data []byte) (string, error) {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, data)
	return "msg-1", nil
}
