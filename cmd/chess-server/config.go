package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// devSecret keeps seat tokens stable across restarts in dev mode
const devSecret = "dev-secret-minimum-32-characters-long"

// secretEnv names the variable holding a fixed token signing secret
const secretEnv = "CHESS_JWT_SECRET"

type serverConfig struct {
	Host        string `validate:"required,hostname|ip"`
	Port        int    `validate:"min=1,max=65535"`
	Dev         bool
	RateLimit   int    `validate:"min=0,max=10000"`
	StoragePath string `validate:"omitempty,max=4096"`
	PIDPath     string `validate:"omitempty,max=4096"`
	PIDLock     bool   `validate:"excluded_without=PIDPath"`
}

func (c serverConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c serverConfig) validate() error {
	err := validator.New().Struct(c)
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Field() {
		case "PIDLock":
			msgs = append(msgs, "--pid-lock requires --pid")
		case "Host":
			msgs = append(msgs, fmt.Sprintf("invalid host %q", fe.Value()))
		case "Port":
			msgs = append(msgs, fmt.Sprintf("port %v out of range 1-65535", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// jwtSecret picks the seat token signing secret: fixed in dev mode, from the
// environment when set, otherwise random for the life of the process
func (c serverConfig) jwtSecret() ([]byte, error) {
	if c.Dev {
		return []byte(devSecret), nil
	}
	if s := os.Getenv(secretEnv); s != "" {
		if len(s) < 32 {
			return nil, fmt.Errorf("%s must be at least 32 characters", secretEnv)
		}
		return []byte(s), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return secret, nil
}
