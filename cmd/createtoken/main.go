package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/checkinblaze/checkinblaze/security"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user ID (token subject)")
	name := flag.String("name", "", "display name")
	upn := flag.String("upn", "", "user principal name")
	expires := flag.Int64("expires", 3600, "lifetime in seconds")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: createtoken -user <id> [-name <name>] [-upn <upn>] [-expires <seconds>]")
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	principal := &security.Principal{
		UserID:      *userID,
		DisplayName: *name,
		UPN:         *upn,
	}
	token, err := security.CreateIdentityToken(principal, secret, *expires)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
