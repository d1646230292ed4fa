package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/repository/specification"
	"golden-notes-be/internal/repository/unitofwork"
	"golden-notes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NotebookRepository())
	assert.NotNil(t, uow.NoteRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Note round trip with field patch", func(t *testing.T) {
		ctx := context.Background()
		ownerId := uuid.New()

		user := &entity.User{
			Id:           ownerId,
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			PasswordHash: "not-a-real-hash",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		assert.NoError(t, uow.UserRepository().Create(ctx, user))

		notebook := &entity.Notebook{
			Id:        uuid.New(),
			Name:      "Integration notebook",
			OwnerId:   ownerId,
			CreatedAt: time.Now(),
		}
		assert.NoError(t, uow.NotebookRepository().Create(ctx, notebook))

		note := &entity.Note{
			Id:         uuid.New(),
			Name:       "Untitled",
			Content:    "",
			NotebookId: notebook.Id,
			OwnerId:    ownerId,
			CreatedAt:  time.Now(),
		}
		assert.NoError(t, uow.NoteRepository().Create(ctx, note))

		// Patch only the name; content must survive.
		assert.NoError(t, uow.NoteRepository().PatchFields(ctx, note.Id, map[string]interface{}{
			"name":       "Patched name",
			"updated_at": time.Now(),
		}))

		fetched, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, fetched) {
			assert.Equal(t, "Patched name", fetched.Name)
			assert.Equal(t, "", fetched.Content)
		}

		// Cascade delete inside a transaction.
		txUow := uowFactory.NewUnitOfWork(ctx)
		assert.NoError(t, txUow.Begin(ctx))
		assert.NoError(t, txUow.NoteRepository().DeleteByNotebookID(ctx, notebook.Id))
		assert.NoError(t, txUow.NotebookRepository().Delete(ctx, notebook.Id))
		assert.NoError(t, txUow.Commit())

		gone, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: note.Id})
		assert.NoError(t, err)
		assert.Nil(t, gone)
	})
}
