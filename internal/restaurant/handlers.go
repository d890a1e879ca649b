package restaurant

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rolzy/mealsteals/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// Search: discover restaurants around an address
// --------------------------------------------------
func (h *Handler) Search(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
		Radius  int    `json:"radius"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Radius <= 0 {
		req.Radius = 1000
	}

	result, err := h.service.Search(c.Request.Context(), req.Address, req.Radius, ListFilter{})
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "restaurant search failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// --------------------------------------------------
// List restaurants
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		Suburb:   c.Query("suburb"),
		Postcode: c.Query("postcode"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	if openStr := c.Query("open_now"); openStr != "" {
		open, err := strconv.ParseBool(openStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid open_now"})
			return
		}
		filter.OpenNow = &open
	}

	restaurants, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch restaurants"})
		return
	}

	c.JSON(http.StatusOK, restaurants)
}

// --------------------------------------------------
// Get restaurant by id
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	restaurant, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch restaurant"})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// --------------------------------------------------
// Scrape status
// --------------------------------------------------
func (h *Handler) GetScrapeStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	status, err := h.service.GetScrapeStatus(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scrape status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uuid": id, "status": status})
}

// --------------------------------------------------
// ADMIN: Update restaurant details
// --------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	var req struct {
		Name          *string   `json:"name"`
		URL           *string   `json:"url"`
		VenueType     *[]string `json:"venue_type"`
		OpenHours     *[]string `json:"open_hours"`
		StreetAddress *string   `json:"street_address"`
		Latitude      *float64  `json:"latitude"`
		Longitude     *float64  `json:"longitude"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	current, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch restaurant"})
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.URL != nil {
		current.URL = *req.URL
	}
	if req.VenueType != nil {
		current.VenueType = *req.VenueType
	}
	if req.OpenHours != nil {
		current.OpenHours = *req.OpenHours
	}
	if req.StreetAddress != nil {
		current.StreetAddress = *req.StreetAddress
	}
	if req.Latitude != nil {
		current.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		current.Longitude = *req.Longitude
	}

	updated, err := h.service.UpdateDetails(c.Request.Context(), current)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update restaurant"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// --------------------------------------------------
// ADMIN: Delete restaurant
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if apperr.IsValidation(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete restaurant"})
		return
	}

	c.Status(http.StatusNoContent)
}
