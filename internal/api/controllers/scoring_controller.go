package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"dishdash/internal/models/request_models"
	"dishdash/internal/services"
	"dishdash/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ScoringController struct {
	scoringService services.ScoringServiceInterface
}

func NewScoringController(scoringService services.ScoringServiceInterface) *ScoringController {
	return &ScoringController{scoringService: scoringService}
}

func (sc *ScoringController) TriggerRunHandler(c *gin.Context) {
	var req request_models.TriggerScoringRequest
	// an empty body means every dimension
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Dimension == "" {
		req.Dimension = "all"
	}

	if err := sc.scoringService.Start(req.Dimension); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondAccepted(c, gin.H{"dimension": req.Dimension}, "Scoring run started")
}

func (sc *ScoringController) ListRunsHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid limit")
		return
	}

	runs, err := sc.scoringService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, runs, "Fetched scoring runs successfully")
}
