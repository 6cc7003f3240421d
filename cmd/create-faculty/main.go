package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/database"
	"github.com/facultrack/attendance-backend/internal/logger"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
)

const minPasswordLen = 8

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	facultyRepo := repository.NewFacultyRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Faculty Account ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < minPasswordLen {
		fmt.Printf("Error: Password must be at least %d characters\n", minPasswordLen)
		return
	}

	fmt.Print("Confirm Password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil || string(confirm) != password {
		fmt.Println("Error: Passwords do not match")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	faculty := &model.Faculty{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
	}

	if err := facultyRepo.Create(ctx, faculty); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Printf("Error: %s is already registered\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create faculty")
	}

	fmt.Printf("\nSuccess! Faculty '%s' (%s) created with ID: %d\n", faculty.Name, faculty.Email, faculty.ID)
}
