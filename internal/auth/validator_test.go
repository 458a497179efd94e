package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		want string
	}{
		{"ok", RegisterRequest{Email: "a@example.com", Name: "A", Password: "password"}, ""},
		{"missing email", RegisterRequest{Name: "A", Password: "p"}, "email is required"},
		{"bad email", RegisterRequest{Email: "nope", Name: "A", Password: "p"}, "email must be a valid email"},
		{"blank name", RegisterRequest{Email: "a@example.com", Name: "   ", Password: "p"}, "name is required"},
		{"missing password", RegisterRequest{Email: "a@example.com", Name: "A"}, "password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	require.NoError(t, ValidateLogin(LoginRequest{Email: "a@example.com", Password: "x"}))
	require.EqualError(t, ValidateLogin(LoginRequest{Email: "a@example.com"}), "password is required")
}
