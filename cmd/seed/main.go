package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pulsecare/pulsecare-api/config"
	"github.com/pulsecare/pulsecare-api/pkg/helpers"
)

// Seeds a demo doctor account for local development. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "dr.demo@pulsecare.dev"
	username := "drdemo"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, username, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (username) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, username, hash, "Demo", "Doctor").Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s password=%s\n", userID, username, password)

	var profileID string
	err = db.QueryRow(`
		INSERT INTO profiles (user_id, gender, has_email_verified)
		VALUES ($1, 'other', TRUE)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id
	`, userID).Scan(&profileID)
	if err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO doctors (profile_id, specialty)
		VALUES ($1, 'general')
		ON CONFLICT (profile_id) DO NOTHING
	`, profileID); err != nil {
		log.Fatalf("failed to seed doctor: %v", err)
	}
	fmt.Printf("doctor profile ensured: profile=%s\n", profileID)

	// A few pulse readings so the vitals feed is not empty
	if _, err := db.Exec(`
		INSERT INTO pulses (patient_name, rate)
		SELECT v.name, v.rate
		FROM (VALUES ('Alice Kemp', 72), ('Marcus Webb', 88), ('Nina Oduya', 64)) AS v(name, rate)
		WHERE NOT EXISTS (SELECT 1 FROM pulses)
	`); err != nil {
		log.Fatalf("failed to seed pulses: %v", err)
	}
	fmt.Println("pulse readings ensured")
}
