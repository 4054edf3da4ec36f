package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"godsendjoseph.dev/r2-gateway/internal/auth"
	"godsendjoseph.dev/r2-gateway/internal/env"
)

// token prints a bearer token accepted by the upload and delete routes.
func main() {
	subject := flag.String("sub", "uploader", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := env.Load(env.GetString("ENV_FILE", ".env")); err != nil {
		log.Fatal(err)
	}

	audience := env.GetString("TOKEN_AUDIENCE", "r2-gateway")
	issuer := env.GetString("TOKEN_ISSUER", "r2-gateway")
	authenticator := auth.NewJWTAuthenticator(env.GetSecret("TOKEN_SECRET", "secret"), audience, issuer)

	now := time.Now()
	token, err := authenticator.GenerateToken(jwt.MapClaims{
		"sub": *subject,
		"exp": now.Add(*ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"iss": issuer,
		"aud": audience,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
