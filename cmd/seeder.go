package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/karteek/splitcard/internal/category"
	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
	categoryDatamodel "github.com/karteek/splitcard/internal/core/datamodel/category"
	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
	userDatamodel "github.com/karteek/splitcard/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"bill_transactions", "processed_bills", "expenses", "credit_cards", "friends"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		demoEmail := "demo@mail.com"
		var demoUser userDatamodel.User
		err = db.Where("email = ?", demoEmail).First(&demoUser).Error
		if err == nil {
			fmt.Println("demo user already exists:", demoEmail)
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}
			demoUser = userDatamodel.User{
				ID:           uuid.NewString(),
				Email:        demoEmail,
				Name:         "Demo User",
				PasswordHash: string(hash),
				IsActive:     true,
			}
			if err := db.Create(&demoUser).Error; err != nil {
				log.Fatalf("failed to insert demo user: %v", err)
			}
			fmt.Println("Seeded demo user:", demoEmail)
		}

		for _, name := range category.DefaultCategories {
			var existing categoryDatamodel.ExpenseCategory
			if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
				continue
			}
			if err := db.Create(&categoryDatamodel.ExpenseCategory{Name: name, IsActive: true}).Error; err != nil {
				log.Fatalf("failed to insert category %s: %v", name, err)
			}
			fmt.Printf("Seeded category: %s\n", name)
		}
		fmt.Println("Categories seeded successfully")

		friends := []string{"Aditi", "Rahul"}
		for _, name := range friends {
			var existing friendDatamodel.Friend
			if err := db.Where("name = ? AND user_id = ?", name, demoUser.ID).First(&existing).Error; err == nil {
				continue
			}
			f := friendDatamodel.Friend{
				ID:     uuid.NewString(),
				UserID: demoUser.ID,
				Name:   name,
			}
			if err := db.Create(&f).Error; err != nil {
				log.Fatalf("failed to insert friend %s: %v", name, err)
			}
			fmt.Printf("Seeded friend: %s\n", name)
		}

		var existingCard cardDatamodel.CreditCard
		if err := db.Where("user_id = ? AND last_four_digits = ?", demoUser.ID, "4242").First(&existingCard).Error; err != nil {
			c := cardDatamodel.CreditCard{
				ID:             uuid.NewString(),
				UserID:         demoUser.ID,
				Name:           "Everyday Card",
				Bank:           "HDFC",
				LastFourDigits: "4242",
				CreditLimit:    150000,
			}
			if err := db.Create(&c).Error; err != nil {
				log.Fatalf("failed to insert credit card: %v", err)
			}
			fmt.Println("Seeded credit card: Everyday Card")
		}

		fmt.Println("Seeding complete")
	},
}
