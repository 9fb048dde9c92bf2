package controllers

import (
	"net/http"
	"strconv"

	"dishdash/internal/models/request_models"
	"dishdash/internal/services"
	"dishdash/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TagController struct {
	tagService services.TagServiceInterface
}

func NewTagController(tagService services.TagServiceInterface) *TagController {
	return &TagController{
		tagService: tagService,
	}
}

func (tc *TagController) ListAllTagsHandler(c *gin.Context) {
	// 1. Parse query parameters
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("pageSize", "20")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return
	}

	// 2. Call service layer
	tags, err := tc.tagService.GetAllTags(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	// 3. Respond with success
	utils.RespondSuccess(c, tags, "Fetched tags successfully")
}

func (tc *TagController) RestaurantTagsHandler(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid restaurant id")
		return
	}

	category := c.Query("category")
	if category == "" {
		utils.RespondError(c, http.StatusBadRequest, "category is required")
		return
	}

	tags, err := tc.tagService.GetRestaurantTags(c.Request.Context(), restaurantID, category)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tags, "Fetched restaurant tags successfully")
}

func (tc *TagController) AttachImageTagsHandler(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid image id")
		return
	}

	var req []request_models.ImageTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tags, err := tc.tagService.AttachImageTags(c.Request.Context(), imageID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tags, "Image tags saved")
}
