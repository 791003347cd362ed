package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswdConfig holds password hashing configuration
type PasswdConfig struct {
	Password string
	Cost     int
}

// NewPasswdConfig creates a new configuration from command-line flags
func NewPasswdConfig() *PasswdConfig {
	password := flag.String("password", "", "Dashboard password (read from stdin when empty)")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")

	flag.Parse()

	return &PasswdConfig{
		Password: *password,
		Cost:     *cost,
	}
}

func main() {
	config := NewPasswdConfig()

	if config.Password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("Failed to read password: %v", err)
		}
		config.Password = strings.TrimRight(line, "\r\n")
	}

	hash, err := HashPassword(config.Password, config.Cost)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("DASHBOARD_PASSWORD_HASH='%s'\n", hash)
}

// HashPassword validates and hashes a dashboard password
func HashPassword(password string, cost int) (string, error) {
	if len(password) < 6 {
		return "", fmt.Errorf("password must be at least 6 characters long")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
