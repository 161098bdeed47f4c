package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tunemate/backend/internal/models"
)

type matchSummary struct {
	ID     string          `json:"id"`
	SongID string          `json:"song_id"`
	Peer   *models.Profile `json:"peer,omitempty"`
}

// ListMatches returns the caller's matches oldest first, each with the peer
// profile when it still exists.
func (h *Handler) ListMatches(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}

	matches, err := h.Storage.MatchesForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load matches"})
		return
	}

	out := make([]matchSummary, 0, len(matches))
	for _, match := range matches {
		summary := matchSummary{ID: match.ID, SongID: match.SongID}
		if peer, err := h.Storage.GetProfileByID(match.OtherUser(userID)); err == nil {
			summary.Peer = peer
		}
		out = append(out, summary)
	}

	c.JSON(http.StatusOK, gin.H{"matches": out})
}
