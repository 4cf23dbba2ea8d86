package domain_test

import (
	"testing"

	"github.com/neomorfeo/gestloc/internal/domain"
)

func TestValidatePeriod(t *testing.T) {
	cases := []struct {
		month, year int
		ok          bool
	}{
		{1, 2026, true},
		{12, 2026, true},
		{0, 2026, false},
		{13, 2026, false},
		{6, 1999, false},
	}
	for _, tc := range cases {
		err := domain.ValidatePeriod(tc.month, tc.year)
		if (err == nil) != tc.ok {
			t.Errorf("ValidatePeriod(%d, %d) = %v, want ok=%v", tc.month, tc.year, err, tc.ok)
		}
	}
}

func TestPhotoCategory_Valid(t *testing.T) {
	if !domain.PhotoCuisine.Valid() {
		t.Error("cuisine should be valid")
	}
	if domain.PhotoCategory("garage").Valid() {
		t.Error("garage is not in the closed set")
	}
}
