package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"support-chat-be/internal/model"
	"support-chat-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedKnowledgeEntries(db)
	seedOperator(db)

	color.Green("Seeding complete.")
}

func seedKnowledgeEntries(db *gorm.DB) {
	entries := []model.KnowledgeEntry{
		{
			Question: "What is your pricing?",
			Answer:   "Plans start at $49/month for the basic tier. The pricing page has a full feature comparison, and annual billing gets you two months free.",
			Tags:     datatypes.NewJSONSlice([]string{"pricing", "cost", "price", "plans"}),
			Position: 0,
		},
		{
			Question: "How do I get started?",
			Answer:   "Sign up for a free account, follow the onboarding checklist, and you'll have your first project running in about ten minutes.",
			Tags:     datatypes.NewJSONSlice([]string{"onboarding", "signup", "start", "begin"}),
			Position: 1,
		},
		{
			Question: "Do you offer a free trial?",
			Answer:   "Yes, every plan comes with a 14-day free trial. No credit card required.",
			Tags:     datatypes.NewJSONSlice([]string{"trial", "free", "demo"}),
			Position: 2,
		},
		{
			Question: "What are your support hours?",
			Answer:   "Our team is available Monday through Friday, 9am to 6pm ET. Outside those hours you can leave a message here and we'll follow up by email.",
			Tags:     datatypes.NewJSONSlice([]string{"support", "hours", "availability", "contact"}),
			Position: 3,
		},
		{
			Question: "Can I cancel my subscription?",
			Answer:   "You can cancel any time from the billing page. Your plan stays active until the end of the current billing period.",
			Tags:     datatypes.NewJSONSlice([]string{"cancel", "subscription", "billing", "refund"}),
			Position: 4,
		},
	}

	for _, entry := range entries {
		var count int64
		db.Model(&model.KnowledgeEntry{}).Where("question = ?", entry.Question).Count(&count)
		if count > 0 {
			color.Yellow("Skipping existing entry: %s", entry.Question)
			continue
		}
		if err := db.Create(&entry).Error; err != nil {
			color.Red("Failed to seed entry %q: %v", entry.Question, err)
			continue
		}
		color.Green("Seeded entry: %s", entry.Question)
	}
}

func seedOperator(db *gorm.DB) {
	email := os.Getenv("SEED_OPERATOR_EMAIL")
	password := os.Getenv("SEED_OPERATOR_PASSWORD")
	if email == "" || password == "" {
		color.Yellow("SEED_OPERATOR_EMAIL / SEED_OPERATOR_PASSWORD not set, skipping operator seed")
		return
	}

	var count int64
	db.Model(&model.Operator{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		color.Yellow("Operator %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Failed to hash operator password: %v", err)
		return
	}

	operator := model.Operator{
		Email:        email,
		FullName:     getEnvOr("SEED_OPERATOR_NAME", "Support Operator"),
		PasswordHash: string(hash),
	}
	if err := db.Create(&operator).Error; err != nil {
		color.Red("Failed to seed operator: %v", err)
		return
	}
	color.Green("Seeded operator: %s", email)
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
