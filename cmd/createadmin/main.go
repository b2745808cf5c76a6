// Command createadmin seeds the administrator account. It prompts for the
// admin's name, email, and password (read without echo), runs migrations if
// needed, and creates the user. The server treats the user whose id matches
// AdminUserID as the administrator, so this should be the first account in
// a fresh database.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/config"
	"github.com/dberzins/inkwell/internal/server/repositories/repomanager"
	"github.com/dberzins/inkwell/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func getSimpleText(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt + "\n> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getPassword() (string, error) {
	fmt.Print("Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	name, err := getSimpleText(reader, "Admin name")
	if err != nil {
		return err
	}
	email, err := getSimpleText(reader, "Admin email")
	if err != nil {
		return err
	}
	password, err := getPassword()
	if err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return errors.New("name, email and password are required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm)

	user, err := userService.Register(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return fmt.Errorf("an account with email %s already exists", email)
		}
		return err
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
	if user.ID != cfg.AdminUserID {
		fmt.Printf("Warning: the server grants admin access to user id %d, this account got id %d\n",
			cfg.AdminUserID, user.ID)
	}

	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
