package validator_test

import (
	"fmt"
	"testing"

	"chatcord-backend/internal/validator"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		expectedError error
	}{
		{
			name:          "Valid: Standard email",
			email:         "user@gmail.com",
			expectedError: nil,
		},
		{
			name:          "Valid: Email with plus sign in local part",
			email:         "user+tag@yahoo.co.uk",
			expectedError: nil,
		},
		{
			name:          "Valid: Email with underscore and dot in local part",
			email:         "first.last_name@yahoo.co.uk",
			expectedError: nil,
		},
		{
			name:          "Error: Too long (67 characters)",
			email:         "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa@web.de",
			expectedError: fmt.Errorf("long_email"),
		},
		{
			name:          "Error: Missing @ sign",
			email:         "userexample.com",
			expectedError: fmt.Errorf("bad_format"),
		},
		{
			name:          "Error: Missing domain part",
			email:         "user@",
			expectedError: fmt.Errorf("bad_format"),
		},
		{
			name:          "Error: Missing TLD",
			email:         "user@domain",
			expectedError: fmt.Errorf("bad_format"),
		},
		{
			name:          "Error: Local part starting with dot",
			email:         ".user@gmail.com",
			expectedError: fmt.Errorf("bad_format"),
		},
		{
			name:          "Error: TLD too short (1 character)",
			email:         "user@example.c",
			expectedError: fmt.Errorf("bad_format"),
		},
		{
			name:          "Error: Unsupported domain",
			email:         "user@wasistdas.com",
			expectedError: fmt.Errorf("unknown_domain"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Email(tc.email)

			if tc.expectedError == nil {
				if err != nil {
					t.Errorf("Email(%q) failed unexpectedly: got error %v, want nil", tc.email, err)
				}
				return
			}

			if err == nil {
				t.Errorf("Email(%q) passed unexpectedly: got nil, want error %v", tc.email, tc.expectedError)
				return
			}

			if err.Error() != tc.expectedError.Error() {
				t.Errorf("Email(%q) got error %q, want error %q", tc.email, err.Error(), tc.expectedError.Error())
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		expectedError error
	}{
		{
			name:          "Valid Password: Minimum Length",
			password:      "aA1bB2",
			expectedError: nil,
		},
		{
			name:          "Valid Password: Mixed Case and Symbols",
			password:      "P@sswOrd123!",
			expectedError: nil,
		},
		{
			name:          "Error: Password Too Short",
			password:      "aA1",
			expectedError: fmt.Errorf("short_password"),
		},
		{
			name:          "Error: Password Too Long",
			password:      "aBc123456789012345678901234567890123",
			expectedError: fmt.Errorf("long_password"),
		},
		{
			name:          "Error: Missing Lowercase Character",
			password:      "AABBCC1234",
			expectedError: fmt.Errorf("no_lowercase"),
		},
		{
			name:          "Error: Missing Uppercase Character",
			password:      "aabbcc1234",
			expectedError: fmt.Errorf("no_uppercase"),
		},
		{
			name:          "Error: Missing Number",
			password:      "PasswordABC",
			expectedError: fmt.Errorf("no_number"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Password(tc.password)

			if tc.expectedError == nil {
				if err != nil {
					t.Errorf("Password(%q) failed unexpectedly: got error %v, want nil", tc.password, err)
				}
				return
			}

			if err == nil {
				t.Errorf("Password(%q) passed unexpectedly: got nil, want error %v", tc.password, tc.expectedError)
				return
			}

			if err.Error() != tc.expectedError.Error() {
				t.Errorf("Password(%q) got error %q, want error %q", tc.password, err.Error(), tc.expectedError.Error())
			}
		})
	}
}

func TestChannelName(t *testing.T) {
	tests := []struct {
		name          string
		channelName   string
		expectedError error
	}{
		{
			name:          "Valid: Normal name",
			channelName:   "off-topic",
			expectedError: nil,
		},
		{
			name:          "Error: Empty name",
			channelName:   "",
			expectedError: fmt.Errorf("empty_name"),
		},
		{
			name:          "Error: Reserved name",
			channelName:   "General",
			expectedError: fmt.Errorf("reserved_name"),
		},
		{
			name:          "Error: Too long",
			channelName:   "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			expectedError: fmt.Errorf("long_name"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ChannelName(tc.channelName)

			if tc.expectedError == nil {
				if err != nil {
					t.Errorf("ChannelName(%q) failed unexpectedly: got error %v, want nil", tc.channelName, err)
				}
				return
			}

			if err == nil {
				t.Errorf("ChannelName(%q) passed unexpectedly: got nil, want error %v", tc.channelName, tc.expectedError)
				return
			}

			if err.Error() != tc.expectedError.Error() {
				t.Errorf("ChannelName(%q) got error %q, want error %q", tc.channelName, err.Error(), tc.expectedError.Error())
			}
		})
	}
}
