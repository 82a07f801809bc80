package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/mongo"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty url", func(t *testing.T) {
		_, err := mongo.New(context.Background(), mongo.Config{})
		assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := mongo.New(context.Background(), mongo.Config{ConnectionURL: "not-a-mongo-url"})
		assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
	})
}

func TestHealthcheck(t *testing.T) {
	url := os.Getenv("KCIDB_TEST_MONGO_URL")
	if url == "" {
		t.Skip("KCIDB_TEST_MONGO_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongo.NewWithDatabase(ctx, mongo.Config{ConnectionURL: url, Database: "kcidb_test"})
	require.NoError(t, err)
	defer db.Client().Disconnect(context.Background())

	assert.NoError(t, mongo.Healthcheck(db.Client())(ctx))
}
