package main

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"linkup/internal/app"
	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/domain/auth"
	"linkup/internal/domain/resource"
)

// seed is idempotent: rows that already exist (by email or name) are left
// untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db, app.Models()...); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// ================== USERS ==================
	log.Println("Creating staff accounts...")
	staff := []struct {
		email, name, password string
		role                  auth.Role
	}{
		{"admin@linkup.local", "Administrator", "admin12345", auth.RoleAdmin},
		{"desk@linkup.local", "Front Desk", "desk12345", auth.RoleStaff},
	}
	for _, s := range staff {
		hash, err := auth.HashPassword(s.password)
		if err != nil {
			log.Fatal(err)
		}
		user := auth.UserModel{Email: s.email, PasswordHash: hash, Role: string(s.role), Name: s.name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			log.Fatalf("create %s: %v", s.email, err)
		}
		log.Printf("%s: %s / %s", s.role, s.email, s.password)
	}

	// ================== COMPUTERS ==================
	// Two rows of eight along the window side of the second floor.
	log.Println("Creating computers...")
	n := 0
	for row := 0; row < 2; row++ {
		for col := 0; col < 8; col++ {
			n++
			pc := resource.Computer{
				Name:   fmt.Sprintf("Computer %d", n),
				X:      decimal.NewFromFloat(12.5 + float64(col)*9.5),
				Y:      decimal.NewFromFloat(18 + float64(row)*14),
				Status: resource.StatusAvailable,
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pc).Error; err != nil {
				log.Fatalf("create %s: %v", pc.Name, err)
			}
		}
	}

	// ================== STUDY ROOMS ==================
	log.Println("Creating study rooms...")
	for i := 0; i < 6; i++ {
		room := resource.StudyRoom{
			Name:   fmt.Sprintf("Study Room %d", i+1),
			X:      decimal.NewFromFloat(10 + float64(i)*15.5),
			Y:      decimal.NewFromFloat(72.25),
			Status: resource.StatusAvailable,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
			log.Fatalf("create %s: %v", room.Name, err)
		}
	}

	log.Printf("Seed completed: %d computers, 6 study rooms", n)
}
