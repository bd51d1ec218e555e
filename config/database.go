package config

import (
	"fmt"

	"github.com/rstferramentas/affiliatehub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection and migrates the schema
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := MigrateDB(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// MigrateDB runs the schema migration on the given connection. Split out from
// InitDB so tests can migrate an in-memory database.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DiscountCode{},
		&models.Brand{},
		&models.CommissionRule{},
		&models.Customer{},
		&models.Commission{},
		&models.LoginCode{},
	)
}

// EnsureAdminUser creates the seed administrator account if it does not exist
func EnsureAdminUser(config *Config) error {
	admin := models.User{
		Name:  config.AdminName,
		Email: config.AdminEmail,
		Role:  models.RoleAdmin,
	}
	return DB.FirstOrCreate(&admin, models.User{Email: admin.Email}).Error
}
