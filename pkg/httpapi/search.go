package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bastiangx/mentionserve/internal/metrics"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/server"
	"github.com/bastiangx/mentionserve/pkg/suggest"
	"github.com/gin-gonic/gin"
)

const transport = "http"

type SearchQuery struct {
	Types []string `form:"type" json:"types"`
	Word  string   `form:"w" json:"w" binding:"required"`
	Limit int      `form:"l" json:"l" binding:"min=0"`
}

type SearchResult struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Replacement string `json:"replacement"`
	Score       int    `json:"score"`
}

type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Count     int            `json:"count"`
	TimeTaken int64          `json:"time_us"`
}

func (service *Service) search(ctx *gin.Context) {
	if !service.limiter.Allow() {
		service.metrics.ObserveRejected(transport, metrics.OutcomeRateLimited)
		ctx.JSON(http.StatusTooManyRequests, NewErrorResponse(ErrRateLimited))
		return
	}

	var req SearchQuery
	if err := ctx.ShouldBindQuery(&req); err != nil {
		service.metrics.ObserveRejected(transport, metrics.OutcomeInvalid)
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(fmt.Errorf("%w: %v", ErrInvalidParams, err)))
		return
	}
	if err := server.ValidateWord(service.config.Server, req.Word); err != nil {
		service.metrics.ObserveRejected(transport, metrics.OutcomeInvalid)
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(err))
		return
	}

	types := req.Types
	if len(types) == 0 {
		types = service.index.Types()
	}
	limit := server.ClampLimit(service.config.Server, req.Limit, service.config.Engine.DefaultLimit)

	start := time.Now()
	results, err := service.index.SearchN(ctx.Request.Context(), autocomplete.SearchParams{Types: types, Word: req.Word}, limit)
	elapsed := time.Since(start)
	service.metrics.ObserveSearch(transport, metrics.Outcome(err, len(results)), elapsed, len(results))

	if err != nil {
		if errors.Is(err, suggest.ErrUnknownType) {
			ctx.JSON(http.StatusBadRequest, NewErrorResponse(err))
			return
		}
		ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
		return
	}

	resp := SearchResponse{
		Results:   make([]SearchResult, len(results)),
		Count:     len(results),
		TimeTaken: elapsed.Microseconds(),
	}
	for i, r := range results {
		resp.Results[i] = SearchResult{Type: r.Type, Label: r.Label, Replacement: r.Replacement, Score: r.Score}
	}
	ctx.JSON(http.StatusOK, resp)
}

func (service *Service) stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, service.index.Stats())
}
