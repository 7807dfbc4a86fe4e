package user

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/karteek/splitcard/internal"
	userDatamodel "github.com/karteek/splitcard/internal/core/datamodel/user"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	byID    map[string]*userDatamodel.User
	byEmail map[string]*userDatamodel.User
	failing bool
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byID:    make(map[string]*userDatamodel.User),
		byEmail: make(map[string]*userDatamodel.User),
	}
}

func (m *mockUserRepository) Create(u *userDatamodel.User) error {
	if m.failing {
		return errors.New("database error")
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepository) GetByID(id string) (*userDatamodel.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		service = NewService(mockRepo, bcrypt.MinCost, slog.Default())
	})

	ginkgo.Describe("Signup", func() {
		ginkgo.Context("when the request is valid", func() {
			ginkgo.It("should create an active user with a hashed password", func() {
				// Given
				dto := SignupDTO{
					Email:    "new@example.com",
					Name:     "New User",
					Password: "long-enough-password",
				}

				// When
				created, err := service.Signup(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(created.ID).ToNot(gomega.BeEmpty())
				gomega.Expect(created.Email).To(gomega.Equal("new@example.com"))
				gomega.Expect(created.IsActive).To(gomega.BeTrue())

				stored := mockRepo.byEmail["new@example.com"]
				gomega.Expect(stored).ToNot(gomega.BeNil())
				gomega.Expect(stored.PasswordHash).ToNot(gomega.Equal(dto.Password))
				gomega.Expect(bcrypt.CompareHashAndPassword(
					[]byte(stored.PasswordHash), []byte(dto.Password))).To(gomega.Succeed())
			})
		})

		ginkgo.Context("when the email is already registered", func() {
			ginkgo.It("should return a conflict error", func() {
				// Given
				dto := SignupDTO{
					Email:    "taken@example.com",
					Name:     "First",
					Password: "long-enough-password",
				}
				_, err := service.Signup(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				dto.Name = "Second"
				duplicate, err := service.Signup(dto)

				// Then
				gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
				gomega.Expect(duplicate).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the request is invalid", func() {
			ginkgo.It("should reject a missing email", func() {
				// When
				created, err := service.Signup(SignupDTO{Name: "No Email", Password: "long-enough-password"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
				gomega.Expect(created).To(gomega.BeNil())
			})

			ginkgo.It("should reject an email without an @", func() {
				// When
				created, err := service.Signup(SignupDTO{
					Email:    "not-an-email",
					Name:     "Bad Email",
					Password: "long-enough-password",
				})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is invalid"))
				gomega.Expect(created).To(gomega.BeNil())
			})

			ginkgo.It("should reject a short password", func() {
				// When
				created, err := service.Signup(SignupDTO{
					Email:    "short@example.com",
					Name:     "Short Password",
					Password: "secret",
				})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("at least 8 characters"))
				gomega.Expect(created).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should return an internal error", func() {
				// Given
				mockRepo.failing = true

				// When
				created, err := service.Signup(SignupDTO{
					Email:    "fail@example.com",
					Name:     "Fail",
					Password: "long-enough-password",
				})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				_, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(created).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("should return the stored user", func() {
			// Given
			created, err := service.Signup(SignupDTO{
				Email:    "lookup@example.com",
				Name:     "Lookup",
				Password: "long-enough-password",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			found, err := service.GetByID(created.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found.Email).To(gomega.Equal("lookup@example.com"))
			gomega.Expect(found.Name).To(gomega.Equal("Lookup"))
		})

		ginkgo.It("should propagate not found", func() {
			// When
			found, err := service.GetByID("missing-id")

			// Then
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
			gomega.Expect(found).To(gomega.BeNil())
		})
	})
})
