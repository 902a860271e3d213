package service

import (
	"context"
	"log/slog"
	"strings"

	"foodconnect/internal/cache"
	"foodconnect/internal/middleware"
	"foodconnect/internal/models"
	"foodconnect/internal/observability"
	"foodconnect/internal/repository"
	"foodconnect/internal/storage"
	"foodconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles account lifecycle: registration, authentication,
// profile updates, and full cascade deletion.
type UserService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	reportRepo  repository.ReportRepository
	followRepo  repository.FollowRepository
	posts       *PostService
	media       *MediaReconciler
}

// RegisterInput carries a new account's fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Region   string
}

// NewUserService returns a new UserService.
func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	reportRepo repository.ReportRepository,
	followRepo repository.FollowRepository,
	posts *PostService,
	media *MediaReconciler,
) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		reportRepo:  reportRepo,
		followRepo:  followRepo,
		posts:       posts,
		media:       media,
	}
}

// Register creates a new account after validating the username, email, and
// password policy. The password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateRegion(in.Region); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Email is already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Region:       in.Region,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the email/password pair and returns the account.
// The error is identical for an unknown email and a wrong password so the
// endpoint cannot be used to probe which emails are registered.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

// IsEmailAvailable reports whether no account uses the email yet.
func (s *UserService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// GetUser returns the public read model for an account.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// ListUsers returns a page of accounts.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserInfo, error) {
	limit, offset = normalizePage(limit, offset)
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, toUserInfo(&users[i]))
	}
	return infos, nil
}

// UpdateRegion sets the account's region.
func (s *UserService) UpdateRegion(ctx context.Context, userID uint, region string) (*models.UserInfo, error) {
	if err := validation.ValidateRegion(region); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Region = region
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// UpdateProfilePicture validates and stores the upload, swaps the stored URL,
// and removes the previous picture if it lived in the managed namespace.
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID uint, upload storage.FileUpload) (*models.UserInfo, error) {
	if err := s.media.ValidateUpload(upload); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	urls, err := s.media.SaveUploads([]storage.FileUpload{upload})
	if err != nil {
		return nil, err
	}

	previous := user.ProfilePictureURL
	user.ProfilePictureURL = urls[0]
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" && s.media.IsManagedURL(previous) {
		s.media.DeleteFiles([]string{previous})
	}

	info := toUserInfo(user)
	return &info, nil
}

// DeleteUser removes the account and everything it owns: posts with their
// images, tags links, comments, likes, and reports; the user's own comments,
// likes, reports, and follow edges; and finally the account row. Received-like
// counters of other authors are settled for the likes this user gave. All
// database work runs in one transaction; files are deleted after commit.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	span, ctx := observability.NewSpan(ctx, "UserService.DeleteUser")
	defer span.End()
	span.AddAttributes(attribute.Int("user_id", int(userID)))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	var pendingDeletes []string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepoTx := s.postRepo.WithTx(tx)

		// Delete the user's posts one aggregate at a time so tag orphan
		// handling and file collection run per post.
		for {
			posts, err := postRepoTx.GetByUserID(ctx, userID, maxPageSize, 0)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				break
			}
			for _, post := range posts {
				paths, err := s.posts.deletePostTx(ctx, tx, post)
				if err != nil {
					return err
				}
				pendingDeletes = append(pendingDeletes, paths...)
			}
		}

		// Settle received-like counters for likes this user gave to posts
		// that still exist (the user's own posts are already gone).
		likeRepoTx := s.likeRepo.WithTx(tx)
		given, err := likeRepoTx.CountGivenByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		userRepoTx := s.userRepo.WithTx(tx)
		for authorID, count := range given {
			if authorID == userID {
				continue
			}
			if err := userRepoTx.IncrementLikesReceived(ctx, authorID, -int(count)); err != nil {
				return err
			}
		}
		if err := likeRepoTx.DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		if err := s.commentRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.reportRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.followRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		if user.ProfilePictureURL != "" && s.media.IsManagedURL(user.ProfilePictureURL) {
			pendingDeletes = append(pendingDeletes, user.ProfilePictureURL)
		}

		return userRepoTx.Delete(ctx, userID)
	})
	if txErr != nil {
		span.SetError(txErr)
		return txErr
	}

	s.media.DeleteFiles(pendingDeletes)
	cache.InvalidateUser(ctx, userID)
	cache.InvalidatePostsList(ctx)
	middleware.Logger.InfoContext(ctx, "User account deleted",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("files_removed", len(pendingDeletes)),
	)
	return nil
}

// DeleteUserByEmail resolves the account by normalized email and removes it
// with the full cascade. Missing accounts are a not-found error, unlike the
// null reads elsewhere, because the caller named a specific target.
func (s *UserService) DeleteUserByEmail(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", normalized)
	}
	return s.DeleteUser(ctx, user.ID)
}

// IsAdmin reports whether the account has the admin role.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func toUserInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Role:               user.Role,
		Region:             user.Region,
		TotalLikesReceived: user.TotalLikesReceived,
		ProfilePictureURL:  user.ProfilePictureURL,
		CreatedAt:          user.CreatedAt,
	}
}
