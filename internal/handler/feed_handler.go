package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"uptotimenews/internal/loader"
	"uptotimenews/internal/model"

	"github.com/gin-gonic/gin"
)

type ArticleList interface {
	Count() int
	Lookup(index int) (model.Article, bool)
	Snapshot() []model.Article
}

type FeedLoader interface {
	Start() <-chan loader.Result
	State() (model.LoadState, error)
}

// ArticleHandler is the HTTP rendering surface: clients pull the list the
// same way a list view does, by count and by row index.
type ArticleHandler struct {
	list   ArticleList
	loader FeedLoader
}

func NewArticleHandler(list ArticleList, feedLoader FeedLoader) *ArticleHandler {
	return &ArticleHandler{list: list, loader: feedLoader}
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	articles := h.list.Snapshot()
	state, err := h.loader.State()

	articleRes := make([]ArticleResponse, 0, len(articles))
	for i, a := range articles {
		articleRes = append(articleRes, ArticleResponse{
			Index:   i,
			Title:   a.Title,
			Summary: a.Summary,
		})
	}

	c.JSON(http.StatusOK, ListResponse{
		Articles: articleRes,
		Total:    len(articles),
		State:    string(state),
		Error:    errorString(err),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	param := c.Param("index")

	index, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid article index", "index", param, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article index"})
		return
	}

	article, ok := h.list.Lookup(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, ArticleResponse{
		Index:   index,
		Title:   article.Title,
		Summary: article.Summary,
	})
}

func (h *ArticleHandler) GetState(c *gin.Context) {
	state, err := h.loader.State()

	c.JSON(http.StatusOK, StateResponse{
		State: string(state),
		Count: h.list.Count(),
		Error: errorString(err),
	})
}

// Refresh starts a fetch and returns without waiting for it. A refresh
// while one is in flight joins the outstanding fetch.
func (h *ArticleHandler) Refresh(c *gin.Context) {
	h.loader.Start()
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *ArticleHandler) GetHealth(c *gin.Context) {
	state, err := h.loader.State()
	if state == model.StateFailed {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"state":  string(state),
			"error":  errorString(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"state":  string(state),
	})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
