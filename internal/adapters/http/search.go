package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.QueueItem, error)
}

type searchResult struct {
	Result []domain.QueueItem `json:"result"`
}

func searchHandler(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("video"))
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing video query"})
			return
		}
		items, err := s.Search(c.Request.Context(), q)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("query", q).Msg("search failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch search results"})
			return
		}
		c.JSON(http.StatusOK, searchResult{Result: items})
	}
}
