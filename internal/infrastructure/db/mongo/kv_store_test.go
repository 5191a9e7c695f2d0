package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestKVStore_MockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newStore := func(mt *mtest.T) *KVStore {
		return &KVStore{coll: mt.Coll, timeout: time.Second}
	}

	mt.Run("get hit", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "pulseconnect_users"},
			{Key: "value", Value: []byte(`[]`)},
			{Key: "updated_at", Value: int64(1)},
		}))

		v, ok, err := newStore(mt).Get("pulseconnect_users")
		require.NoError(mt, err)
		assert.True(mt, ok)
		assert.Equal(mt, `[]`, string(v))
	})

	mt.Run("get miss", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, ok, err := newStore(mt).Get("absent")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("set upserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "k"}}}},
		))

		require.NoError(mt, newStore(mt).Set("k", []byte(`"v"`)))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("delete error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "shutting down",
		}))

		err := newStore(mt).Delete("k")
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "delete k")
		var ce mongo.CommandError
		assert.ErrorAs(mt, err, &ce)
	})
}
