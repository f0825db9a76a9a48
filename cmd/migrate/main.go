package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"median/database"
	"median/store"
)

func main() {
	seedPath := flag.String("seed", "", "yaml or json fixture to upload into seed_documents")
	show := flag.String("show", "", "print one stored document after migrating, as kind/id (e.g. field/field-email)")
	flag.Parse()

	godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatal("Failed to connect:", err)
	}

	err = database.Migrate(ctx, conn, func(name string) {
		log.Printf("✓ %s", name)
	})
	conn.Close(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nAll migrations completed!")

	if *seedPath == "" && *show == "" {
		return
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	db, err := database.Connect(ctx, databaseURL, logger)
	if err != nil {
		log.Fatal("Failed to connect:", err)
	}
	defer db.Close()

	if *seedPath != "" {
		seed, err := store.LoadSeedFile(*seedPath)
		if err != nil {
			log.Fatal("Failed to read seed:", err)
		}
		if err := db.ReplaceSeed(ctx, seed); err != nil {
			log.Fatal("Failed to upload seed:", err)
		}
		fmt.Printf("Seed uploaded from %s\n", *seedPath)
	}

	if *show != "" {
		kind, id, ok := strings.Cut(*show, "/")
		if !ok || kind == "" || id == "" {
			log.Fatalf("invalid -show %q, want kind/id", *show)
		}
		doc, err := db.GetDocument(ctx, kind, id)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %s (namespace %q, position %d)\n%s\n", doc.Kind, doc.ID, doc.NamespaceID, doc.Position, doc.Body)
	}
}
