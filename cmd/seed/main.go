package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"teamchat-service/internal/config"
	"teamchat-service/internal/database"
	"teamchat-service/internal/models"
	"teamchat-service/internal/repositories/postgres"
)

// defaultEmojis is the built-in reaction catalog every workspace gets.
var defaultEmojis = []models.Emoji{
	{Name: "thumbs up", Shortcode: ":+1:"},
	{Name: "thumbs down", Shortcode: ":-1:"},
	{Name: "heart", Shortcode: ":heart:"},
	{Name: "joy", Shortcode: ":joy:"},
	{Name: "tada", Shortcode: ":tada:"},
	{Name: "eyes", Shortcode: ":eyes:"},
	{Name: "fire", Shortcode: ":fire:"},
	{Name: "rocket", Shortcode: ":rocket:"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	slog.Info("Seeding built-in emojis...")
	for _, emoji := range defaultEmojis {
		var count int64
		db.Model(&models.Emoji{}).
			Where("shortcode = ? AND workspace_id IS NULL", emoji.Shortcode).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&emoji).Error; err != nil {
			slog.Warn("Failed to seed emoji", "shortcode", emoji.Shortcode, "error", err)
		}
	}

	slog.Info("Creating demo users...")
	userRepo := postgres.NewUserRepository(db)
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	demoUsers := []models.User{
		{Username: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		{Username: "bob", DisplayName: "Bob", Email: "bob@example.com"},
		{Username: "carol", DisplayName: "Carol", Email: "carol@example.com"},
	}
	for _, user := range demoUsers {
		user.Password = string(password)
		user.Status = models.UserStatusOffline
		if err := userRepo.Create(&user); err != nil {
			slog.Warn("Demo user might already exist", "username", user.Username, "error", err)
		} else {
			slog.Info("Created demo user", "id", user.ID, "username", user.Username)
		}
	}

	slog.Info("Seeding completed")
}
