package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

const usage = "expected 'hash-password' or 'migrate' subcommand"

func main() {
	hashCmd := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := hashCmd.String("password", "", "Admin password to hash for ADMIN_PASSWORD_HASH")
	cost := hashCmd.Int("cost", bcrypt.DefaultCost, "bcrypt cost")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	driver := migrateCmd.String("driver", "", "Database driver (sqlite or pgx), defaults to DB_DRIVER")
	dsn := migrateCmd.String("database-url", "", "Database URL, defaults to DATABASE_URL")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	// Optional .env, same as the server.
	_ = godotenv.Load()

	switch os.Args[1] {
	case "hash-password":
		hashCmd.Parse(os.Args[2:])
		if *password == "" {
			fmt.Println("password is required")
			hashCmd.PrintDefaults()
			os.Exit(1)
		}
		hashPassword(*password, *cost)
	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		name, err := store.ParseDriver(orEnv(*driver, "DB_DRIVER", store.DriverSQLite))
		if err != nil {
			log.Fatalf("Invalid driver: %v", err)
		}
		runMigrations(name, orEnv(*dsn, "DATABASE_URL", "./ghalya.db"))
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func hashPassword(password string, cost int) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(string(hashed))
}

func runMigrations(driver, dsn string) {
	db, err := store.NewStore(driver, dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Printf("Migrations applied to %s database.\n", db.Driver())
}

func orEnv(value, key, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
