package docdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestConnectRejectsEmptySettings(t *testing.T) {
	_, _, err := Connect(context.Background(), "", "lilkami", 0)
	require.Error(t, err)

	_, _, err = Connect(context.Background(), "mongodb://localhost:27017", " ", 0)
	require.Error(t, err)
}

func TestIndexModelsCoverUniqueUserKeys(t *testing.T) {
	models := IndexModels()

	var userKeys []string
	for _, m := range models[UsersCollection] {
		keys, ok := m.Keys.(bson.D)
		require.True(t, ok)
		userKeys = append(userKeys, keys[0].Key)
		require.NotNil(t, m.Options)
	}
	assert.ElementsMatch(t, []string{"clerkId", "email", "username"}, userKeys)
	assert.Len(t, models[WallpapersCollection], 2)
}
