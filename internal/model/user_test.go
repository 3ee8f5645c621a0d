package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleOperator, true},
		{RoleManager, RoleAdmin, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleOperator, true},
		{RoleOperator, RoleAdmin, false},
		{RoleOperator, RoleManager, false},
		{RoleOperator, RoleOperator, true},
		// Unknown roles fail-closed.
		{"unknown", RoleOperator, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleOperator, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestProductImageRef(t *testing.T) {
	p := Product{ID: "CAB004"}
	if got := p.ImageRef(); got != "" {
		t.Errorf("expected empty image ref, got %q", got)
	}
	p.ImageMime = "image/jpeg"
	if got := p.ImageRef(); got != "/api/products/CAB004/image" {
		t.Errorf("unexpected image ref %q", got)
	}
}

func TestValidTransactionType(t *testing.T) {
	for _, tt := range []string{TxCheckOut, TxCheckIn, TxMaintenance, TxRepair, TxLost, TxTransfer} {
		if !ValidTransactionType(tt) {
			t.Errorf("expected %q to be valid", tt)
		}
	}
	if ValidTransactionType("borrow") {
		t.Error("expected unknown type to be invalid")
	}
}
