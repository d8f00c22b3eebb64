package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type PasswordServiceTestSuite struct {
	suite.Suite
	service PasswordServiceInterface
}

func (s *PasswordServiceTestSuite) SetupTest() {
	s.service = NewPasswordService(bcrypt.MinCost)
}

func TestPasswordServiceSuite(t *testing.T) {
	suite.Run(t, new(PasswordServiceTestSuite))
}

func (s *PasswordServiceTestSuite) TestValidatePassword() {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "minimum length", password: "abc123"},
		{name: "maximum length", password: strings.Repeat("a", 100)},
		{name: "with spaces", password: "correct horse battery"},
		{name: "empty", password: "", wantErr: ErrPasswordEmpty},
		{name: "too short", password: "abc12", wantErr: ErrPasswordTooShort},
		{name: "too long", password: strings.Repeat("a", 101), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.ValidatePassword(tt.password)
			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				return
			}
			s.NoError(err)
		})
	}
}

func (s *PasswordServiceTestSuite) TestHashPassword_ValidPassword() {
	hash, err := s.service.HashPassword("secret1")
	s.NoError(err)
	s.NotEmpty(hash)
	s.NotEqual("secret1", hash)
	s.True(strings.HasPrefix(hash, "$2a$"))
}

func (s *PasswordServiceTestSuite) TestHashPassword_InvalidPassword() {
	hash, err := s.service.HashPassword("short")
	s.ErrorIs(err, ErrPasswordTooShort)
	s.Empty(hash)
}

func (s *PasswordServiceTestSuite) TestHashPassword_LongPasswordsStayDistinct() {
	base := strings.Repeat("x", 80)

	hash, err := s.service.HashPassword(base + "A")
	s.Require().NoError(err)

	s.True(s.service.ComparePassword(base+"A", hash))
	s.False(s.service.ComparePassword(base+"B", hash))
}

func (s *PasswordServiceTestSuite) TestComparePassword() {
	hash, err := s.service.HashPassword("Secret123")
	s.Require().NoError(err)

	s.True(s.service.ComparePassword("Secret123", hash))
	s.False(s.service.ComparePassword("secret123", hash))
	s.False(s.service.ComparePassword("", hash))
	s.False(s.service.ComparePassword("Secret123", "not-a-hash"))
	s.False(s.service.ComparePassword("Secret123", ""))
}

func (s *PasswordServiceTestSuite) TestHashUniqueness() {
	first, err := s.service.HashPassword("Secret123")
	s.Require().NoError(err)
	second, err := s.service.HashPassword("Secret123")
	s.Require().NoError(err)

	s.NotEqual(first, second)
}

func (s *PasswordServiceTestSuite) TestNewPasswordService_InvalidCostFallsBack() {
	service := NewPasswordService(99).(*PasswordService)
	s.Equal(DefaultBCryptCost, service.cost)
}
