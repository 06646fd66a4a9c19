package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Skotchmaster/docflow/internal/config"
	"github.com/Skotchmaster/docflow/internal/hash"
	"github.com/Skotchmaster/docflow/internal/models"
)

// Seeds the database with fake users and documents for local development.
func main() {
	count := flag.Int("count", 1000, "number of users and documents to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	roles := models.Roles()

	users := make([]models.User, 0, *count)
	for i := 0; i < *count; i++ {
		pwHash, err := hash.HashPassword(gofakeit.Password(true, true, true, false, false, 12))
		if err != nil {
			log.Fatalf("hash error: %v", err)
		}
		users = append(users, models.User{
			Email:        gofakeit.Email(),
			PasswordHash: pwHash,
			Role:         roles[rand.Intn(len(roles))],
		})
	}
	if err := db.CreateInBatches(&users, 100).Error; err != nil {
		log.Fatalf("user seed error: %v", err)
	}
	log.Printf("%d users have been created", len(users))

	docs := make([]models.Document, 0, *count)
	for i := 0; i < *count; i++ {
		docs = append(docs, models.Document{
			Name:     gofakeit.ProductName(),
			Type:     gofakeit.FileMimeType(),
			Status:   models.DocumentStatusPending,
			FilePath: "./uploads/" + gofakeit.Word() + "." + gofakeit.FileExtension(),
		})
	}
	if err := db.CreateInBatches(&docs, 100).Error; err != nil {
		log.Fatalf("document seed error: %v", err)
	}
	log.Printf("%d documents have been created", len(docs))
}
