// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	groupmemostore "github.com/kdawg1232/memoserver/internal/app/store/groupmemos"
	groupstore "github.com/kdawg1232/memoserver/internal/app/store/groups"
	membershipstore "github.com/kdawg1232/memoserver/internal/app/store/memberships"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature. It
// holds the Mongo database and the logger so the membership, invitation,
// and directory handlers share the same core dependencies.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	GroupMemos  *groupmemostore.Store
}

// NewHandler constructs a new groups Handler. It is typically called from
// the bootstrap BuildHandler function, where the application's DB and
// logger are already initialized.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		GroupMemos:  groupmemostore.New(db),
	}
}

// pathID parses a chi URL parameter as an ObjectID, writing a 400 on
// failure. The bool reports whether the caller should continue.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
