// Command seed populates the development database with demo data.
package main

import (
	"flag"
	"log"

	"foodconnect/internal/bootstrap"
	"foodconnect/internal/config"
	"foodconnect/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of demo users to create")
	posts := flag.Int("posts", 3, "number of posts per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.DemoDataWithOptions(db, seed.Options{
		Users:        *users,
		PostsPerUser: *posts,
		MaxDays:      90,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed")
}
