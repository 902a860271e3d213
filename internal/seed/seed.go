// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"foodconnect/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control how much demo data is generated.
type Options struct {
	Users        int
	PostsPerUser int
	MaxDays      int
}

// DefaultOptions returns a small but representative demo dataset shape.
func DefaultOptions() Options {
	return Options{Users: 10, PostsPerUser: 3, MaxDays: 90}
}

var demoTagPool = []string{
	"vegan", "dessert", "breakfast", "quick", "italian", "spicy",
	"gluten-free", "soup", "grill", "baking", "salad", "comfort-food",
}

// DemoData populates the database with fake users, posts, tags, comments,
// likes, and follows using DefaultOptions.
func DemoData(db *gorm.DB) error {
	return DemoDataWithOptions(db, DefaultOptions())
}

// DemoDataWithOptions populates the database with fake content.
func DemoDataWithOptions(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!demo"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			Email:        fmt.Sprintf("demo%d_%s", i, strings.ToLower(gofakeit.Email())),
			PasswordHash: string(hashed),
			Role:         models.RoleUser,
			Region:       gofakeit.Country(),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	tagsByName := make(map[string]*models.Tag, len(demoTagPool))
	for _, name := range demoTagPool {
		tag := &models.Tag{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(tag).Error; err != nil {
			return fmt.Errorf("seed tag: %w", err)
		}
		tagsByName[name] = tag
	}

	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := &models.Post{
				Title:       gofakeit.Dinner(),
				Ingredients: strings.Join([]string{gofakeit.Vegetable(), gofakeit.Fruit(), gofakeit.Lunch()}, ", "),
				Description: gofakeit.Paragraph(1, 3, 8, "\n"),
				Calories:    float64(r.Intn(900) + 100),
				UserID:      user.ID,
				CreatedAt:   time.Now().Add(-time.Duration(r.Intn(maxDays*24)) * time.Hour),
			}
			if err := db.Create(post).Error; err != nil {
				return fmt.Errorf("seed post: %w", err)
			}

			image := models.Media{
				URL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
				PostID: post.ID,
			}
			if err := db.Create(&image).Error; err != nil {
				return fmt.Errorf("seed media: %w", err)
			}

			for _, name := range pickTags(r, 2) {
				link := models.PostTag{PostID: post.ID, TagID: tagsByName[name].ID}
				if err := db.Create(&link).Error; err != nil {
					return fmt.Errorf("seed post tag: %w", err)
				}
			}
			posts = append(posts, post)
		}
	}

	// Sprinkle comments, likes, and follows across the mesh.
	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID {
				continue
			}
			if r.Intn(3) == 0 {
				comment := models.Comment{
					Content: gofakeit.Comment(),
					UserID:  user.ID,
					PostID:  post.ID,
				}
				if err := db.Create(&comment).Error; err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
			}
			if r.Intn(2) == 0 {
				like := models.Like{UserID: user.ID, PostID: post.ID}
				if err := db.Create(&like).Error; err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
				if err := db.Model(&models.User{}).
					Where("id = ?", post.UserID).
					UpdateColumn("total_likes_received", gorm.Expr("total_likes_received + 1")).Error; err != nil {
					return fmt.Errorf("seed like counter: %w", err)
				}
			}
		}
	}

	for i, follower := range users {
		for j, followed := range users {
			if i == j || r.Intn(4) != 0 {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
			if err := db.Create(&follow).Error; err != nil {
				return fmt.Errorf("seed follow: %w", err)
			}
		}
	}

	log.Printf("Seeded %d users, %d posts, %d tags", len(users), len(posts), len(demoTagPool))
	return nil
}

func pickTags(r *rand.Rand, n int) []string {
	picked := make(map[string]struct{}, n)
	for len(picked) < n {
		picked[demoTagPool[r.Intn(len(demoTagPool))]] = struct{}{}
	}
	names := make([]string, 0, n)
	for name := range picked {
		names = append(names, name)
	}
	return names
}
