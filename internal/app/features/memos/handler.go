// internal/app/features/memos/handler.go
package memos

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	groupmemostore "github.com/kdawg1232/memoserver/internal/app/store/groupmemos"
	groupstore "github.com/kdawg1232/memoserver/internal/app/store/groups"
	membershipstore "github.com/kdawg1232/memoserver/internal/app/store/memberships"
	memostore "github.com/kdawg1232/memoserver/internal/app/store/memos"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the memos feature: the
// recording share flow, the personal scope listing, audio delivery, and
// deletion. Audio blobs live behind the storage.Store; Mongo holds only
// their object keys.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Storage     storage.Store
	Memos       *memostore.Store
	GroupMemos  *groupmemostore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
}

// NewHandler constructs a memos Handler. Called from bootstrap BuildHandler
// with the already-connected database and the configured blob store.
func NewHandler(db *mongo.Database, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Storage:     store,
		Memos:       memostore.New(db),
		GroupMemos:  groupmemostore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
