package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staybook-backend/middleware"
	"staybook-backend/services"
	"staybook-backend/utils"
)

type RegisterHotelPayload struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city" binding:"required"`
	Contact string `json:"contact"`
}

type HotelController struct {
	HotelSvc *services.HotelService
}

func NewHotelController(svc *services.HotelService) *HotelController {
	return &HotelController{HotelSvc: svc}
}

// RegisterHotel handles POST /api/hotels. Registering promotes the caller
// to hotel owner.
func (ctrl *HotelController) RegisterHotel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var p RegisterHotelPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "name and city are required")
		return
	}

	hotel, err := ctrl.HotelSvc.Register(user, p.Name, p.Address, p.City, p.Contact)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"message": "Hotel registered successfully",
		"hotel":   hotel,
	})
}
