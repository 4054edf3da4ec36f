package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/icrowley/fake"
	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/env"
	"godsendjoseph.dev/r2-gateway/internal/gateway"
	"godsendjoseph.dev/r2-gateway/internal/storage"
)

// seed fills the local development bucket with fake text documents.
func main() {
	count := flag.Int("n", 20, "number of objects to upload")
	flag.Parse()

	if err := env.Load(env.GetString("ENV_FILE", ".env")); err != nil {
		log.Fatal(err)
	}

	bucket, err := storage.NewLocalBucket(env.GetString("LOCAL_STORAGE_DIR", "./uploads"))
	if err != nil {
		log.Panic(err)
	}

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	gw := gateway.New(bucket, gateway.Config{
		PublicURL: env.GetString("CLOUDFLARE_R2_URL", "http://localhost:8080/v1/objects"),
	}, logger)

	if err := Seed(context.Background(), gw, *count); err != nil {
		log.Fatal(err)
	}
}

func Seed(ctx context.Context, gw *gateway.Gateway, count int) error {
	folders := []string{"uploads", "documents", "notes"}

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s.txt", strings.ToLower(fake.Word()))
		body := fake.ParagraphsN(3)

		result := gw.Put(ctx, gateway.File{
			Name:        name,
			ContentType: "text/plain; charset=utf-8",
			Body:        strings.NewReader(body),
		}, folders[i%len(folders)])

		if !result.Success {
			return fmt.Errorf("seeding %s: %s", name, result.Error)
		}
		log.Printf("seeded %s -> %s", name, result.URL)
	}

	return nil
}
