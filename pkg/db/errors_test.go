package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
)

func TestIsMissingTable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pgx undefined table", &pgconn.PgError{Code: "42P01"}, true},
		{"pq undefined table", &pq.Error{Code: "42P01"}, true},
		{"pgx other code", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite missing table", errors.New("no such table: campaign_products"), true},
		{"postgres text form", errors.New(`relation "campaign_products" does not exist`), true},
		{"wrapped", fmt.Errorf("listing products: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMissingTable(tc.err); got != tc.want {
				t.Fatalf("IsMissingTable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"pgx unique", &pgconn.PgError{Code: "23505", ConstraintName: "ux_campaigns_slug"}, "", true},
		{"pgx named constraint", &pgconn.PgError{Code: "23505", ConstraintName: "ux_campaigns_slug"}, "ux_campaigns_slug", true},
		{"pgx different constraint", &pgconn.PgError{Code: "23505", ConstraintName: "ux_campaigns_slug"}, "ux_other", false},
		{"pgx other sqlstate", &pgconn.PgError{Code: "42P01"}, "", false},
		{"pq unique", &pq.Error{Code: "23505", Constraint: "ux_campaigns_slug"}, "ux_campaigns_slug", true},
		{"pq different constraint", &pq.Error{Code: "23505", Constraint: "ux_campaigns_slug"}, "ux_other", false},
		{"wrapped pgx", fmt.Errorf("creating campaign: %w", &pgconn.PgError{Code: "23505"}), "", true},
		{"sqlite text form", errors.New("UNIQUE constraint failed: campaigns.slug"), "", true},
		{"postgres text form", errors.New(`duplicate key value violates unique constraint "ux_campaigns_slug"`), "", true},
		{"unrelated", errors.New("connection refused"), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}

func TestStorageCode(t *testing.T) {
	if got := StorageCode(&pgconn.PgError{Code: "42P01"}); got != pkgerrors.CodeCollectionMissing {
		t.Fatalf("missing table classified as %s", got)
	}
	if got := StorageCode(errors.New("no such table: order_items")); got != pkgerrors.CodeCollectionMissing {
		t.Fatalf("sqlite missing table classified as %s", got)
	}
	if got := StorageCode(errors.New("connection refused")); got != pkgerrors.CodeDependency {
		t.Fatalf("generic failure classified as %s", got)
	}
}
