// Creates a user with a properly hashed password for local testing.
// Usage: go run ./cmd/create_test_user -username alice -email alice@example.com -password 'Passw0rd!'
package main

import (
	"context"
	"flag"
	"fmt"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/security"
	"todo_webapp/internal/service"
)

func main() {
	username := flag.String("username", "testuser", "username")
	email := flag.String("email", "test@example.com", "email address")
	password := flag.String("password", "", "password; random when empty")
	flag.Parse()

	cfg := config.Load()
	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	pw := *password
	if pw == "" {
		token, err := security.GenerateSecureToken(8)
		if err != nil {
			logger.Fatal("failed to generate password", "error", err)
		}
		pw = "A1!" + token
	}

	users := service.NewUserService(repository.NewPGUserRepo(pool), service.BcryptHasher{})
	u, err := users.Register(context.Background(), *username, *email, pw)
	if err != nil {
		logger.Fatal("failed to create user", "error", err)
	}

	fmt.Printf("created user id=%d username=%s email=%s password=%s\n", u.ID, u.Username, u.Email, pw)
}
