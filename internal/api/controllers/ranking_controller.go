package controllers

import (
	"net/http"
	"strings"

	"dishdash/internal/models/request_models"
	"dishdash/internal/services"
	"dishdash/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RankingController struct {
	rankingService  services.RankingServiceInterface
	profileService  services.UserProfileServiceInterface
	defaultCategory string
}

func NewRankingController(
	rankingService services.RankingServiceInterface,
	profileService services.UserProfileServiceInterface,
	defaultCategory string,
) *RankingController {
	return &RankingController{
		rankingService:  rankingService,
		profileService:  profileService,
		defaultCategory: defaultCategory,
	}
}

func (rc *RankingController) RankHandler(c *gin.Context) {
	var req request_models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ids, ok := parseIDs(c, req.RestaurantIDs)
	if !ok {
		return
	}

	ranked, err := rc.rankingService.RankByPreferences(c.Request.Context(), req.Weights, ids)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ranked, "Ranked restaurants successfully")
}

func (rc *RankingController) RecommendationsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	raw := strings.Split(c.Query("restaurantIds"), ",")
	var idStrings []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			idStrings = append(idStrings, s)
		}
	}
	if len(idStrings) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "restaurantIds is required")
		return
	}
	ids, ok := parseIDs(c, idStrings)
	if !ok {
		return
	}

	category := c.DefaultQuery("category", rc.defaultCategory)
	ranked, err := rc.rankingService.RankBySimilarity(c.Request.Context(), userID, category, ids)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ranked, "Fetched recommendations successfully")
}

func (rc *RankingController) SwipeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid restaurant id")
		return
	}

	var req request_models.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := rc.profileService.RecordSwipe(c.Request.Context(), userID, restaurantID, *req.Liked); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Swipe recorded")
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

func parseIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid restaurant id: "+s)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
