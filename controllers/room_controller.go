package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staybook-backend/middleware"
	"staybook-backend/services"
	"staybook-backend/utils"
)

type CreateRoomPayload struct {
	RoomType      string   `json:"roomType" binding:"required"`
	PricePerNight int64    `json:"pricePerNight" binding:"required"`
	Amenities     []string `json:"amenities"`
}

type ToggleRoomPayload struct {
	RoomID uint `json:"roomId" binding:"required"`
}

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// CreateRoom handles POST /api/rooms (owner only).
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var p CreateRoomPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "roomType and pricePerNight are required")
		return
	}

	room, err := ctrl.RoomSvc.Create(user.SubjectID, p.RoomType, p.PricePerNight, p.Amenities)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, gin.H{"room": room})
}

// GetRooms handles GET /api/rooms.
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.RoomSvc.ListAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GetOwnerRooms handles GET /api/rooms/owner.
func (ctrl *RoomController) GetOwnerRooms(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	rooms, err := ctrl.RoomSvc.ListForOwner(user.SubjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoomByID handles GET /api/rooms/:id.
func (ctrl *RoomController) GetRoomByID(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid room id")
		return
	}

	room, err := ctrl.RoomSvc.GetByID(uint(id64))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room})
}

// ToggleAvailability handles POST /api/rooms/toggle-availability.
func (ctrl *RoomController) ToggleAvailability(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var p ToggleRoomPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "roomId is required")
		return
	}

	room, err := ctrl.RoomSvc.ToggleAvailability(user.SubjectID, p.RoomID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room})
}
