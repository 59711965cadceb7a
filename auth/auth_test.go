package auth

import "testing"

func TestValidatePrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		wantErr   bool
	}{
		{"valid short", "alice", false},
		{"valid dashed", "w3gef-owiaa-aaaaa-qaaba-cai", false},
		{"valid digits", "abc123-xyz", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"uppercase", "Alice", true},
		{"leading dash", "-alice", true},
		{"trailing dash", "alice-", true},
		{"double dash", "ali--ce", true},
		{"space", "al ice", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrincipal(tt.principal)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrincipal(%q) error = %v, wantErr %v", tt.principal, err, tt.wantErr)
			}
		})
	}
}

func TestNewReceiptID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewReceiptID()
		if id == "" {
			t.Fatal("empty receipt id")
		}
		if seen[id] {
			t.Fatalf("duplicate receipt id: %s", id)
		}
		seen[id] = true
	}
}
