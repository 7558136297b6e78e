package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dreamxec/backend/internal/model"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockEligibilityDonationRepo struct {
	sumFunc func(ctx context.Context, ref model.DonorRef) (int, error)
}

func (m *mockEligibilityDonationRepo) SumCompletedByDonor(ctx context.Context, ref model.DonorRef) (int, error) {
	if m.sumFunc != nil {
		return m.sumFunc(ctx, ref)
	}
	return 0, nil
}

type mockEligibilityProjectRepo struct {
	countFunc func(ctx context.Context, ownerID string, statuses []string) (int, error)
	called    bool
}

func (m *mockEligibilityProjectRepo) CountByOwnerAndStatus(ctx context.Context, ownerID string, statuses []string) (int, error) {
	m.called = true
	if m.countFunc != nil {
		return m.countFunc(ctx, ownerID, statuses)
	}
	return 0, nil
}

func fixedSum(total int) *mockEligibilityDonationRepo {
	return &mockEligibilityDonationRepo{
		sumFunc: func(_ context.Context, _ model.DonorRef) (int, error) { return total, nil },
	}
}

func fixedCount(used int) *mockEligibilityProjectRepo {
	return &mockEligibilityProjectRepo{
		countFunc: func(_ context.Context, _ string, _ []string) (int, error) { return used, nil },
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestEligibility_InvalidRef(t *testing.T) {
	svc := NewEligibilityService(fixedSum(0), fixedCount(0), 2000)

	for name, ref := range map[string]model.DonorRef{
		"empty": {},
		"both":  {UserID: "user-1", DonorToken: "tok-1"},
	} {
		if _, err := svc.Compute(context.Background(), ref); !errors.Is(err, ErrInvalidDonor) {
			t.Errorf("%s ref: expected ErrInvalidDonor, got %v", name, err)
		}
	}
}

func TestEligibility_ZeroDonated_CannotCreate(t *testing.T) {
	svc := NewEligibilityService(fixedSum(0), fixedCount(0), 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.AllowedSlots != 0 || e.UsedSlots != 0 || e.RemainingSlots != 0 {
		t.Errorf("expected all-zero slots, got %+v", e)
	}
	if e.CanCreate {
		t.Error("expected canCreate=false with zero donated")
	}
}

func TestEligibility_OneSlotAtExactCost(t *testing.T) {
	svc := NewEligibilityService(fixedSum(2000), fixedCount(0), 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.AllowedSlots != 1 || e.RemainingSlots != 1 || !e.CanCreate {
		t.Errorf("expected 1 free slot, got %+v", e)
	}
}

func TestEligibility_TruncatingDivision(t *testing.T) {
	cases := []struct {
		total, allowed int
	}{
		{0, 0}, {1999, 0}, {2000, 1}, {2001, 1}, {3999, 1}, {4000, 2}, {10500, 5},
	}
	for _, c := range cases {
		svc := NewEligibilityService(fixedSum(c.total), fixedCount(0), 2000)
		e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
		if err != nil {
			t.Fatalf("total=%d: unexpected error: %v", c.total, err)
		}
		if e.AllowedSlots != c.allowed {
			t.Errorf("total=%d: expected allowed=%d, got %d", c.total, c.allowed, e.AllowedSlots)
		}
	}
}

func TestEligibility_UsedSlotConsumed(t *testing.T) {
	svc := NewEligibilityService(fixedSum(2000), fixedCount(1), 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.UsedSlots != 1 || e.RemainingSlots != 0 || e.CanCreate {
		t.Errorf("expected fully used quota, got %+v", e)
	}
}

func TestEligibility_RejectedProjectFreesSlot(t *testing.T) {
	// The repo count excludes REJECTED projects; used drops back to 0.
	pr := &mockEligibilityProjectRepo{
		countFunc: func(_ context.Context, _ string, statuses []string) (int, error) {
			for _, s := range statuses {
				if s == model.ProjectStatusRejected {
					t.Error("REJECTED must not consume a slot")
				}
			}
			return 0, nil
		},
	}
	svc := NewEligibilityService(fixedSum(2000), pr, 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.RemainingSlots != 1 {
		t.Errorf("expected slot freed, got %+v", e)
	}
}

func TestEligibility_UsedOverAllowed_RemainingClampsToZero(t *testing.T) {
	svc := NewEligibilityService(fixedSum(2000), fixedCount(3), 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.RemainingSlots != 0 || e.CanCreate {
		t.Errorf("expected clamped remaining=0, got %+v", e)
	}
}

func TestEligibility_TokenRef_SkipsProjectCount(t *testing.T) {
	pr := fixedCount(99)
	svc := NewEligibilityService(fixedSum(4000), pr, 2000)

	e, err := svc.Compute(context.Background(), model.DonorRefForToken("tok-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr.called {
		t.Error("project count must not be queried for a guest token ref")
	}
	if e.UsedSlots != 0 || e.RemainingSlots != 2 {
		t.Errorf("expected 2 free slots for token donor, got %+v", e)
	}
}

func TestEligibility_RepoErrorPropagates(t *testing.T) {
	dr := &mockEligibilityDonationRepo{
		sumFunc: func(_ context.Context, _ model.DonorRef) (int, error) {
			return 0, errors.New("db error")
		},
	}
	svc := NewEligibilityService(dr, fixedCount(0), 2000)

	if _, err := svc.Compute(context.Background(), model.DonorRefForUser("user-1")); err == nil {
		t.Fatal("expected error from donation repo")
	}
}

func TestAmountToNextSlot(t *testing.T) {
	cases := []struct {
		total, want int
	}{
		{0, 2000}, {500, 1500}, {1999, 1}, {2000, 2000}, {2500, 1500},
	}
	for _, c := range cases {
		if got := AmountToNextSlot(c.total, 2000); got != c.want {
			t.Errorf("total=%d: expected %d, got %d", c.total, c.want, got)
		}
	}
}
