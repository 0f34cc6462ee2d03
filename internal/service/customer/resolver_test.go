package customer

import (
	"errors"
	"testing"
	"time"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	"github.com/Sina-Lotfi/storefront/internal/storage/memory"
)

func TestResolver_Resolve_CreatesDefaultProfile(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(memory.NewCustomerRepository(), nil)

	customer, err := resolver.Resolve(42)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if customer.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", customer.UserID)
	}
	if customer.Membership != domain.MembershipBronze {
		t.Fatalf("expected default bronze membership, got %s", customer.Membership)
	}

	again, err := resolver.Resolve(42)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if again.ID != customer.ID {
		t.Fatalf("expected one row per principal, got ids %d and %d", customer.ID, again.ID)
	}
}

func TestResolver_Resolve_RejectsBadPrincipal(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(memory.NewCustomerRepository(), nil)

	if _, err := resolver.Resolve(0); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestResolver_Update(t *testing.T) {
	t.Parallel()

	repo := memory.NewCustomerRepository()
	resolver := NewResolver(repo, nil)

	birthDate := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	updated, err := resolver.Update(42, domain.Customer{
		Phone:      "+31201234567",
		BirthDate:  &birthDate,
		Membership: domain.MembershipGold,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.UserID != 42 {
		t.Fatalf("user link must stay intact, got %d", updated.UserID)
	}
	if updated.Phone != "+31201234567" {
		t.Fatalf("unexpected phone: %s", updated.Phone)
	}
	if updated.Membership != domain.MembershipGold {
		t.Fatalf("expected gold membership, got %s", updated.Membership)
	}

	stored, err := repo.GetByUser(42)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if stored.Membership != domain.MembershipGold {
		t.Fatalf("update not persisted, got %s", stored.Membership)
	}
}

func TestResolver_Update_KeepsMembershipWhenOmitted(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(memory.NewCustomerRepository(), nil)

	if _, err := resolver.Update(42, domain.Customer{Membership: domain.MembershipSilver}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	updated, err := resolver.Update(42, domain.Customer{Phone: "+10000000000"})
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if updated.Membership != domain.MembershipSilver {
		t.Fatalf("expected silver membership preserved, got %s", updated.Membership)
	}
}

func TestResolver_Update_RejectsUnknownTier(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(memory.NewCustomerRepository(), nil)

	_, err := resolver.Update(42, domain.Customer{Membership: domain.Membership("platinum")})
	if !errors.Is(err, domain.ErrMembershipInvalid) {
		t.Fatalf("expected ErrMembershipInvalid, got %v", err)
	}
}
