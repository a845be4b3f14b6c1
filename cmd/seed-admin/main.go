// Command seed-admin creates an administrator account, or promotes an
// existing account and resets its password.
//
//	seed-admin -email admin@example.com -password s3cret -name Admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/spark-meetup/internal/config"
	"github.com/iliyamo/spark-meetup/internal/database"
	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/repository"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Admin", "display name for a new account")
	phone := flag.String("phone", "", "phone number for a new account")
	flag.Parse()

	if err := run(*email, *password, *name, *phone); err != nil {
		fmt.Fprintln(os.Stderr, "seed-admin:", err)
		os.Exit(1)
	}
}

func run(email, password, name, phone string) error {
	if email == "" || password == "" {
		flag.Usage()
		return errors.New("-email and -password are required")
	}
	if len(password) < service.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", service.MinPasswordLength)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(database.Options{
		Driver: cfg.DB.Driver,
		User:   cfg.DB.User,
		Pass:   cfg.DB.Pass,
		Host:   cfg.DB.Host,
		Port:   cfg.DB.Port,
		Name:   cfg.DB.Name,
		Path:   cfg.DB.SQLitePath,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		return err
	}

	hash, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	users := repository.NewUserRepo(db)
	now := time.Now()

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		id, err := users.Create(ctx, model.User{
			Name:            name,
			Email:           email,
			Phone:           phone,
			PasswordHash:    hash,
			AlwaysAvailable: true,
			LoginMethod:     model.LoginMethodLocal,
			Role:            model.RoleAdmin,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Printf("created admin %s (id %d)\n", email, id)
		return nil
	case err != nil:
		return fmt.Errorf("look up %s: %w", email, err)
	}

	if err := users.SetRole(ctx, existing.ID, model.RoleAdmin, now); err != nil {
		return fmt.Errorf("promote: %w", err)
	}
	if err := users.UpdatePassword(ctx, existing.ID, hash, now); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Printf("promoted %s (id %d) to admin and reset its password\n", email, existing.ID)
	return nil
}
