package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/docuchat/docuchat-backend/internal/builder"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ingest registers a local file as a document and runs the ingestion
// pipeline synchronously. Useful for seeding a knowledge base without
// going through the HTTP API.
func main() {
	filePath := flag.String("file", "", "Path to the file to ingest (required)")
	title := flag.String("title", "", "Document title (defaults to the file name)")
	flag.Parse()

	// Reject bad invocations before touching the database
	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <path> [-title <title>]")
		os.Exit(2)
	}
	if _, err := os.Stat(*filePath); err != nil {
		log.Fatal("Cannot read file:", err)
	}

	ingestor, err := builder.BuildIngestor()
	if err != nil {
		log.Fatal("Failed to build ingestor:", err)
	}
	defer ingestor.Close()

	docTitle := *title
	if docTitle == "" {
		docTitle = filepath.Base(*filePath)
	}

	ctx := context.Background()

	doc, err := ingestor.DocumentRepo.Create(ctx, entity.Document{
		ID:       uuid.New().String(),
		Title:    docTitle,
		FilePath: *filePath,
		Status:   entity.DocumentStatusUploaded,
	})
	if err != nil {
		log.Fatal("Failed to create document:", err)
	}

	ingestor.Logger.Info("ingesting document",
		zap.String("document_id", doc.ID),
		zap.String("title", doc.Title),
		zap.String("file", *filePath),
	)

	if err := ingestor.Pipeline.Run(ctx, doc.ID); err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	final, err := ingestor.DocumentRepo.Get(ctx, doc.ID)
	if err != nil {
		log.Fatal("Failed to read back document:", err)
	}

	fmt.Printf("document %s ingested with status %s\n", final.ID, final.Status)
}
