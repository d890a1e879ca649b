package deal

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rolzy/mealsteals/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// Get deal by id
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal id"})
		return
	}

	deal, err := h.service.GetDeal(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch deal"})
		return
	}

	c.JSON(http.StatusOK, deal)
}

// --------------------------------------------------
// Search deals
// --------------------------------------------------
func (h *Handler) Search(c *gin.Context) {
	filter := SearchFilter{
		RestaurantID: c.Query("restaurant_id"),
		DayOfWeek:    c.Query("day_of_week"),
		DishSearch:   c.Query("dish"),
	}

	if priceStr := c.Query("max_price"); priceStr != "" {
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		filter.MaxPrice = &price
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	deals, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search deals"})
		return
	}

	c.JSON(http.StatusOK, deals)
}

// --------------------------------------------------
// Deals for a restaurant
// --------------------------------------------------
func (h *Handler) ListByRestaurant(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	deals, err := h.service.ListByRestaurant(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch deals"})
		return
	}

	c.JSON(http.StatusOK, deals)
}

// --------------------------------------------------
// Deals running on a given day
// --------------------------------------------------
func (h *Handler) ListByDay(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	deals, err := h.service.ListByDay(c.Request.Context(), c.Param("day"), limit)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch deals"})
		return
	}

	c.JSON(http.StatusOK, deals)
}

// --------------------------------------------------
// ADMIN: Patch deal
// --------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal id"})
		return
	}

	var req struct {
		Price     *string `json:"price"`
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
		Notes     *string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	current, err := h.service.GetDeal(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch deal"})
		return
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		current.Price = &price
	}
	if req.StartTime != nil {
		current.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		current.EndTime = req.EndTime
	}
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	updated, err := h.service.UpdateDeal(c.Request.Context(), current)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// --------------------------------------------------
// ADMIN: Delete deal
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal id"})
		return
	}

	if err := h.service.DeleteDeal(c.Request.Context(), id); err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete deal"})
		return
	}

	c.Status(http.StatusNoContent)
}
