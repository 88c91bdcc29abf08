package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CommentsController serves the site-wide comment feed.
type CommentsController struct {
	catalog CatalogStore
}

func NewCommentsController(catalogStore CatalogStore) *CommentsController {
	return &CommentsController{catalog: catalogStore}
}

// ListAllComments returns every comment on the site joined with its book
// title, newest first.
// GET /api/comments
func (cc *CommentsController) ListAllComments(c *gin.Context) {
	comments, err := cc.catalog.ListAllComments()
	if err != nil {
		respondInternalError(c, err, "list all comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": len(comments)})
}
