package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/config"
	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/router"
	"github.com/campushub/campus-services/services"
	"github.com/campushub/campus-services/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// The payment client is built once here and injected; handlers never
	// reach for ambient provider state.
	gateway := services.NewStripeService(services.StripeConfig{
		SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		SuccessURL: config.Get("STRIPE_SUCCESS_URL", "http://localhost:3000/payment/success"),
		CancelURL:  config.Get("STRIPE_CANCEL_URL", "http://localhost:3000/payment/cancel"),
	})

	r := router.SetupRouter(db, gateway)

	port := config.Get("PORT", "8080")
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.FoodItem{},
		&models.FoodOrder{},
		&models.FoodOrderItem{},
		&models.Notification{},
		&models.StudyMaterial{},
		&models.BoardingPlace{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
