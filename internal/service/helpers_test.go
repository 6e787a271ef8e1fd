package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/notify"
	"github.com/anchorfit/storefront/internal/paystack"
	"github.com/anchorfit/storefront/internal/repository"
	boltrepo "github.com/anchorfit/storefront/internal/repository/bolt"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := boltrepo.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	repos := boltrepo.NewRepositories(db, zap.NewNop())
	t.Cleanup(func() { repos.Close() })
	return repos
}

// seedCustomer creates a verified user with a matching profile
func seedCustomer(t *testing.T, repos *repository.Repositories, email string) (*domain.User, *domain.Profile) {
	t.Helper()
	ctx := context.Background()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	user := &domain.User{Email: email, PasswordHash: hash, EmailVerified: true}
	require.NoError(t, repos.User.Create(ctx, user))

	profile := &domain.Profile{Email: email, FullName: "Ada Obi", Phone: "08000000000"}
	require.NoError(t, repos.Profile.Create(ctx, profile))

	return user, profile
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []paystack.InitializeRequest
	fn    func(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error)
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	n := len(g.calls)
	g.mu.Unlock()

	if g.fn != nil {
		return g.fn(ctx, req)
	}
	return &paystack.Transaction{
		AuthorizationURL: "https://checkout.paystack.com/session",
		Reference:        "ref_" + string(rune('a'+n-1)),
	}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	seller []notify.OrderNotice
	buyer  []notify.OrderNotice
	err    error
	delay  time.Duration
}

func (n *recordingNotifier) SendSellerOrderNotice(ctx context.Context, notice notify.OrderNotice) error {
	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seller = append(n.seller, notice)
	return n.err
}

func (n *recordingNotifier) SendBuyerDeliveryConfirmation(ctx context.Context, notice notify.OrderNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buyer = append(n.buyer, notice)
	return n.err
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.seller), len(n.buyer)
}

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		Items: []CheckoutItem{
			{ID: "tee-01", Name: "Anchor Tee", Price: decimal.NewFromInt(32000), Quantity: 2, Size: "M", Color: "Black"},
		},
		CustomerDetails: CustomerInput{
			Name:    "Ada Obi",
			Email:   "ada@example.com",
			Phone:   "08000000000",
			Address: "1 Marina",
			State:   "Lagos",
		},
		ShippingFee: decimal.NewFromInt(3500),
	}
}

func strPtr(s string) *string { return &s }
