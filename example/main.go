package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tunaaoguzhann/limited-time-token/core"
)

func main() {
	clock := time.Now()
	cfg := core.Config{
		Secret: "my-secret-key-12345",
		Now:    func() time.Time { return clock },
	}

	gen, err := core.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	token, err := gen.Generate(map[string]any{"user_id": 42, "action": "reset-password"}, 5*time.Second)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("Generated token:\n  %s\n\n", token)

	dec, err := core.NewDecoder(cfg, token)
	if err != nil {
		log.Fatalf("Failed to create decoder: %v", err)
	}
	payload, err := dec.Decode()
	if err != nil {
		log.Fatalf("Failed to decode token: %v", err)
	}
	fmt.Printf("Decoded payload: %v\n", payload)

	clock = clock.Add(10 * time.Second)

	_, err = dec.Decode()
	if errors.Is(err, core.ErrExpired) {
		fmt.Printf("\nAs expected, the token expired after 10 seconds: %v\n", err)
	}
	fmt.Printf("Decode with default: %v\n", dec.DecodeOr(map[string]any{}))
}
