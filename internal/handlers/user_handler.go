package handlers

import (
	"net/http"

	"cropcare-service/internal/models"
	"cropcare-service/internal/services"
	"cropcare-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.IUserService
}

func NewUserHandler(userService services.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	users.POST("/register", h.Register)
	users.GET("/:phone", h.GetByPhone)
	users.POST("/:phone/crops", h.AddCrop)
	users.PATCH("/:phone/crops/:cropId", h.UpdateCrop)

	officer := router.Group("/api/officer")
	officer.GET("/farmers", h.ListFarmers)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "phone and name are required")
		return
	}

	user, err := h.userService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(user))
}

func (h *UserHandler) GetByPhone(c *gin.Context) {
	user, err := h.userService.GetByPhone(c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(user))
}

func (h *UserHandler) AddCrop(c *gin.Context) {
	var req models.AddCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "crop name is required")
		return
	}

	crop, err := h.userService.AddCrop(c.Param("phone"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(crop))
}

func (h *UserHandler) UpdateCrop(c *gin.Context) {
	var update models.CropUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid crop update")
		return
	}

	crop, err := h.userService.UpdateCrop(c.Param("phone"), c.Param("cropId"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(crop))
}

func (h *UserHandler) ListFarmers(c *gin.Context) {
	farmers, err := h.userService.ListFarmers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateListResponse(farmers))
}
