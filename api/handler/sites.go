package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/store"
)

// Sites returns a handler for GET /api/v1/sites: the configured sites with
// their stored-article counts, sorted by site name.
func Sites(sites map[string]*config.SiteConfig, articles *store.ArticleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries := make([]models.SiteSummary, 0, len(sites))
		for name, site := range sites {
			count, err := articles.CountBySite(c.Request.Context(), name)
			if err != nil {
				respondError(c, err)
				return
			}
			summary := models.SiteSummary{SiteName: name, StoredArticles: count}
			if len(site.StartURL) > 0 {
				summary.StartURL = site.StartURL[0]
			}
			summaries = append(summaries, summary)
		}
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].SiteName < summaries[j].SiteName
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"sites":   summaries,
		})
	}
}
