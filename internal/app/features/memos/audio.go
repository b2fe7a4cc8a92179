// internal/app/features/memos/audio.go
package memos

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeAudio handles GET /memos/{id}/audio. The author can always play
// their own clip; anyone else must share an accepted group the memo is
// linked to. Local storage serves the file directly; object storage gets a
// short-lived signed URL and a redirect.
func (h *Handler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}
	memoID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memo, err := h.Memos.GetByID(ctx, memoID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			errors.WriteError(w, h.Log, faults.ErrNotFound)
			return
		}
		errors.WriteError(w, h.Log, err)
		return
	}

	if memo.AuthorID != userID {
		allowed, err := h.canHear(ctx, memoID, userID)
		if err != nil {
			errors.WriteError(w, h.Log, err)
			return
		}
		if !allowed {
			errors.WriteError(w, h.Log, faults.ErrForbidden)
			return
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if local, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(memo.AudioPath)
		if err != nil {
			h.Log.Error("audio path resolve failed",
				zap.String("audio_path", memo.AudioPath),
				zap.Error(err))
			errors.WriteError(w, h.Log, faults.ErrUnavailable)
			return
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, memo.AudioPath, &storage.PresignOptions{
		Expires: 15 * time.Minute,
	})
	if err != nil {
		h.Log.Error("signed URL generation failed",
			zap.String("audio_path", memo.AudioPath),
			zap.Error(err))
		errors.WriteError(w, h.Log, faults.ErrUnavailable)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}

// canHear reports whether userID shares an accepted group with the memo.
func (h *Handler) canHear(ctx context.Context, memoID, userID primitive.ObjectID) (bool, error) {
	links, err := h.GroupMemos.ListByMemo(ctx, memoID)
	if err != nil {
		return false, err
	}
	if len(links) == 0 {
		return false, nil
	}
	groupIDs, err := h.Memberships.AcceptedGroupIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	member := make(map[primitive.ObjectID]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		member[id] = struct{}{}
	}
	for _, l := range links {
		if _, ok := member[l.GroupID]; ok {
			return true, nil
		}
	}
	return false, nil
}
