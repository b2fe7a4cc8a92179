// internal/app/features/memos/share.go
package memos

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kdawg1232/memoserver/internal/app/features/errors"
	"github.com/kdawg1232/memoserver/internal/app/policy/grouppolicy"
	"github.com/kdawg1232/memoserver/internal/app/sharing"
	groupmemostore "github.com/kdawg1232/memoserver/internal/app/store/groupmemos"
	"github.com/kdawg1232/memoserver/internal/app/system/authz"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
	"github.com/kdawg1232/memoserver/internal/app/system/htmlsanitize"
	"github.com/kdawg1232/memoserver/internal/app/system/limits"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type shareResponse struct {
	Memo         models.Memo `json:"memo"`
	SharedTo     int         `json:"shared_to"`
	FailedShares int         `json:"failed_shares"`
}

// HandleShareMemo handles POST /memos: a multipart form carrying the audio
// clip, the capture location, and zero or more target group IDs.
//
// The write sequence is upload, insert, fan-out. An empty audio part fails
// fast before anything is written. If the insert fails after a successful
// upload the blob is orphaned; a maintenance sweep reclaims those, never
// this handler. Group link failures do not fail the request — the memo
// persisted, so the caller gets a 201 with a count of what could not be
// linked.
func (h *Handler) HandleShareMemo(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		errors.WriteError(w, h.Log, faults.ErrUnauthenticated)
		return
	}

	if err := r.ParseMultipartForm(limits.MaxAudioUploadBytes); err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil || header == nil || header.Size == 0 {
		if file != nil {
			file.Close()
		}
		errors.WriteError(w, h.Log, faults.ErrEmptyRecording)
		return
	}
	defer file.Close()

	lat, latErr := strconv.ParseFloat(r.FormValue("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if latErr != nil || lngErr != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	duration, err := strconv.Atoi(r.FormValue("duration_seconds"))
	if err != nil || duration <= 0 || duration > models.MaxMemoDurationSeconds {
		errors.WriteMessage(w, http.StatusBadRequest,
			fmt.Sprintf("duration_seconds must be between 1 and %d", models.MaxMemoDurationSeconds))
		return
	}

	targets, err := parseGroupIDs(r.Form["group_ids"])
	if err != nil {
		errors.WriteMessage(w, http.StatusBadRequest, "invalid group id")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mp4"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	audioPath, err := uploadAudio(ctx, h.Storage, file, contentType)
	if err != nil {
		h.Log.Error("audio upload failed", zap.Error(err))
		errors.WriteError(w, h.Log, faults.ErrUploadFailed)
		return
	}

	memo, err := h.Memos.Insert(ctx, models.Memo{
		AuthorID:        userID,
		Latitude:        lat,
		Longitude:       lng,
		AudioPath:       audioPath,
		DurationSeconds: duration,
		SizeBytes:       header.Size,
		Title:           htmlsanitize.StripTags(r.FormValue("title")),
		Description:     htmlsanitize.Sanitize(r.FormValue("description")),
	})
	if err != nil {
		// The uploaded blob is orphaned now. It is reclaimed by the
		// maintenance sweep, not deleted here, so a flaky store delete
		// cannot make this failure path worse.
		h.Log.Error("memo insert failed after upload",
			zap.String("audio_path", audioPath),
			zap.Error(err))
		errors.WriteError(w, h.Log, faults.ErrPersistFailed)
		return
	}

	res := sharing.FanOut(ctx, h.Log, targets, func(ctx context.Context, groupID primitive.ObjectID) error {
		return h.linkToGroup(ctx, groupID, memo.ID, userID)
	})

	errors.WriteJSON(w, http.StatusCreated, shareResponse{
		Memo:         memo,
		SharedTo:     res.Succeeded(),
		FailedShares: res.Failed,
	})
}

// linkToGroup is one fan-out attempt: membership is re-checked per target
// so a single stale or forbidden group id poisons only its own link. A link
// that already exists counts as success — the desired state holds.
func (h *Handler) linkToGroup(ctx context.Context, groupID, memoID, userID primitive.ObjectID) error {
	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return faults.ErrNotFound
		}
		return err
	}
	rows, err := h.Memberships.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if d := grouppolicy.CanShareTo(g, rows, userID); !d.Allowed {
		return fmt.Errorf("%w: %s", faults.ErrForbidden, d.Reason)
	}
	if _, err := h.GroupMemos.Insert(ctx, groupID, memoID, userID); err != nil {
		if err == groupmemostore.ErrAlreadyShared {
			return nil
		}
		return err
	}
	return nil
}

// parseGroupIDs accepts repeated group_ids form values, each of which may
// itself be a comma-separated list, and returns deduplicated ObjectIDs.
func parseGroupIDs(values []string) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(part)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
