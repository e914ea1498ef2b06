//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"potterdex/internal/character/models"
	"potterdex/internal/character/store"
	"potterdex/pkg/testutil/containers"
)

func TestMongoStoreContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	mongo := containers.NewMongoContainer(t)
	db := mongo.Client.Database("potterdex_test")

	suite.Run(t, &storeContractSuite{
		newStore: func() characterStore {
			// each test starts from a dropped collection via Replace in SetupTest
			_ = db.Collection("personajes").Drop(context.Background())
			return store.NewMongoStore(db, "personajes")
		},
	})
}

func TestMongoStoreReadsMistypedDocuments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	mongo := containers.NewMongoContainer(t)
	db := mongo.Client.Database("potterdex_mistyped")
	s := store.NewMongoStore(db, "personajes")

	_, err := s.Replace(ctx, []models.Character{{Name: "Harry Potter"}})
	require.NoError(t, err)
	_, err = db.Collection("personajes").InsertOne(ctx, bson.D{
		{Key: "_id", Value: "hand-written"},
		{Key: "name", Value: "Peeves"},
		{Key: "yearOfBirth", Value: "unknown"},
	})
	require.NoError(t, err)

	all, err := s.FindAll(ctx)
	require.NoError(t, err, "one bad document must not fail the listing")
	require.Len(t, all, 2)
	assert.Equal(t, "Peeves", all[1].Name)
	assert.Nil(t, all[1].YearOfBirth)
}
