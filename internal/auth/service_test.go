package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	hashes        map[string]string // email -> password hash
	userIDs       map[string]string // email -> userID
	inactive      map[string]bool   // email -> inactive flag
	usersByID     map[string]*User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		hashes: map[string]string{
			"user@example.com":     string(hashedPassword),
			"second@example.com":   string(hashedPassword),
			"inactive@example.com": string(hashedPassword),
		},
		userIDs: map[string]string{
			"user@example.com":     "user-1",
			"second@example.com":   "user-2",
			"inactive@example.com": "user-3",
		},
		inactive: map[string]bool{
			"inactive@example.com": true,
		},
		usersByID: map[string]*User{
			"user-1": {ID: "user-1", Email: "user@example.com", Name: "First User"},
			"user-2": {ID: "user-2", Email: "second@example.com", Name: "Second User"},
		},
	}
}

func (m *mockUserRepository) GetCredentials(email string) (string, string, bool, error) {
	if m.returnError {
		return "", "", false, m.errorToReturn
	}

	if hash, exists := m.hashes[email]; exists {
		return hash, m.userIDs[email], !m.inactive[email], nil
	}
	return "", "", false, errors.New("user not found")
}

func (m *mockUserRepository) GetUser(userID string) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			})

			ginkgo.It("should generate valid JWT tokens", func() {
				// Given
				dto := LoginDTO{
					Email:    "second@example.com",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// Validate access token
				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("user-2"))
				gomega.Expect(claims.Email).To(gomega.Equal("second@example.com"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown email", func() {
				// Given
				dto := LoginDTO{
					Email:    "nonexistent@example.com",
					Password: "any_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for wrong password", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "wrong_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the account is inactive", func() {
			ginkgo.It("should refuse to issue tokens", func() {
				// Given
				dto := LoginDTO{
					Email:    "inactive@example.com",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				// Given
				dto := LoginDTO{
					Email:    "",
					Password: "password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return validation error for empty password", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				// Given
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Email:    "user@example.com",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should return a new token pair", func() {
				// When
				newTokens, err := service.RefreshTokens(validRefreshToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(newTokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(newTokens.RefreshToken).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should preserve user information in new tokens", func() {
				// When
				newTokens, err := service.RefreshTokens(validRefreshToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("user-1"))
				gomega.Expect(claims.Email).To(gomega.Equal("user@example.com"))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				// When
				tokens, err := service.RefreshTokens("invalid.token.format")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for expired token", func() {
				// Given a generator that issues already-expired tokens
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
				expiredTokenGen.RefreshTokenTTL = -1 * time.Hour
				expiredToken, err := expiredTokenGen.GenerateRefreshToken("user-1", "user@example.com")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				tokens, err := service.RefreshTokens(expiredToken)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject an access token used as refresh token", func() {
				// Given
				dto := LoginDTO{Email: "user@example.com", Password: "correct_password"}
				tokens, err := service.Authenticate(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When: access and refresh tokens are signed with different secrets
				refreshed, err := service.RefreshTokens(tokens.AccessToken)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
				gomega.Expect(refreshed.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the user behind the token is gone", func() {
			ginkgo.It("should return invalid token error", func() {
				// Given
				stray, err := tokenGen.GenerateRefreshToken("deleted-user", "gone@example.com")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				tokens, err := service.RefreshTokens(stray)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		var validAccessToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Email:    "second@example.com",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validAccessToken = tokens.AccessToken
		})

		ginkgo.Context("when access token is valid", func() {
			ginkgo.It("should return claims with user information", func() {
				// When
				claims, err := service.ValidateAccessToken(validAccessToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims).ToNot(gomega.BeNil())
				gomega.Expect(claims.UserID).To(gomega.Equal("user-2"))
				gomega.Expect(claims.Email).To(gomega.Equal("second@example.com"))
				gomega.Expect(claims.ExpiresAt).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("when access token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				// When
				claims, err := service.ValidateAccessToken("invalid.token")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for empty token", func() {
				// When
				claims, err := service.ValidateAccessToken("")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for expired token", func() {
				// Given
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
				expiredTokenGen.AccessTokenTTL = -1 * time.Hour
				expiredToken, err := expiredTokenGen.GenerateAccessToken("user-1", "user@example.com")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				claims, err := service.ValidateAccessToken(expiredToken)

				// Then
				gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret-key"
		refreshSecret string        = "test-refresh-secret-key"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
	})

	ginkgo.Describe("NewJWTTokenGenerator", func() {
		ginkgo.It("should fall back to default TTLs when given zero values", func() {
			// When
			gen := NewJWTTokenGenerator(accessSecret, refreshSecret, 0, 0)

			// Then
			gomega.Expect(gen.AccessTokenTTL).To(gomega.Equal(15 * time.Minute))
			gomega.Expect(gen.RefreshTokenTTL).To(gomega.Equal(7 * 24 * time.Hour))
		})
	})

	ginkgo.Describe("GenerateAccessToken", func() {
		ginkgo.It("should generate valid access token", func() {
			// Given
			userID := "user-123"
			email := "test@example.com"

			// When
			token, err := tokenGen.GenerateAccessToken(userID, email)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateAccessToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(userID))
			gomega.Expect(claims.Email).To(gomega.Equal(email))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(accessTTL), time.Minute))
		})
	})

	ginkgo.Describe("GenerateRefreshToken", func() {
		ginkgo.It("should generate valid refresh token", func() {
			// Given
			userID := "user-456"
			email := "refresh@example.com"

			// When
			token, err := tokenGen.GenerateRefreshToken(userID, email)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateRefreshToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(userID))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(refreshTTL), time.Minute))
		})
	})

	ginkgo.Describe("token secret separation", func() {
		ginkgo.It("should not validate an access token against the refresh secret", func() {
			// Given
			token, err := tokenGen.GenerateAccessToken("user-1", "cross@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := tokenGen.ValidateRefreshToken(token)

			// Then
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should not validate a token signed with a different secret", func() {
			// Given
			otherGen := NewJWTTokenGenerator("a-completely-different-secret", refreshSecret, accessTTL, refreshTTL)
			token, err := otherGen.GenerateAccessToken("user-1", "other@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := tokenGen.ValidateAccessToken(token)

			// Then
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})
})

// DTO Tests
var _ = ginkgo.Describe("LoginDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.Context("when all fields are valid", func() {
			ginkgo.It("should not return error", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "secure_password",
				}

				// When
				err := dto.Validate()

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})
		})

		ginkgo.Context("when email is empty", func() {
			ginkgo.It("should return validation error", func() {
				// Given
				dto := LoginDTO{
					Email:    "  ",
					Password: "password",
				}

				// When
				err := dto.Validate()

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.Equal("email is required"))
			})
		})

		ginkgo.Context("when password is empty", func() {
			ginkgo.It("should return validation error", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@example.com",
					Password: "",
				}

				// When
				err := dto.Validate()

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.Equal("password is required"))
			})
		})
	})
})

var _ = ginkgo.Describe("RefreshTokenDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should accept a non-empty token", func() {
			// Given
			dto := RefreshTokenDTO{RefreshToken: "valid.jwt.token"}

			// When
			err := dto.Validate()

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an empty token", func() {
			// Given
			dto := RefreshTokenDTO{RefreshToken: ""}

			// When
			err := dto.Validate()

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("refresh token is required"))
		})
	})
})
