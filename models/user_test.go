package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Passw0rd!", false},
		{"too short", "Pa0!", true},
		{"no upper", "passw0rd!", true},
		{"no lower", "PASSW0RD!", true},
		{"no digit", "Password!", true},
		{"no special", "Passw0rdX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, 8)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequest_Validate_NormalizesEmail(t *testing.T) {
	req := &RegisterRequest{
		Email:     "  Alice@Example.COM ",
		Password:  "Passw0rd!",
		FirstName: "  Alice ",
	}

	require.NoError(t, req.Validate(8))
	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "Alice", req.FirstName)
}

func TestRegisterRequest_Validate_BadEmail(t *testing.T) {
	req := &RegisterRequest{Email: "not-an-email", Password: "Passw0rd!"}
	assert.Error(t, req.Validate(8))
}

func TestUpdateRoleRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateRoleRequest{Role: RoleAdmin}).Validate())
	assert.Error(t, (&UpdateRoleRequest{Role: "owner"}).Validate())
}
