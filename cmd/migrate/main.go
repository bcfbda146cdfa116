package main

import (
	"log"
	"os"

	"war-room-be/internal/model"
	"war-room-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions AutoMigrate won't create
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Mission{},
		&model.Document{},
		&model.DocumentEmbedding{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatCitation{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: supporting indexes and views
	log.Println("Step 3: Creating Indexes and Views...")

	postMigrationSQL := []string{
		// Vector index for cosine retrieval
		`CREATE INDEX IF NOT EXISTS idx_document_embeddings_embedding_value
		 ON document_embeddings USING hnsw (embedding_value vector_cosine_ops);`,

		// Messages are read back per scope-session thread
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_thread_key
		 ON chat_messages (thread_key);`,

		// View: searchable_documents (only fully processed rows are retrievable)
		`CREATE OR REPLACE VIEW searchable_documents AS
		 SELECT d.id AS document_id, d.title, d.content, de.embedding_value AS embedding, d.user_id
		 FROM documents d JOIN document_embeddings de ON d.id = de.document_id
		 WHERE d.deleted_at IS NULL AND d.processing_status = 'completed';`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
