package api

import (
	"net/http"

	reqdto "ordersaga/internal/handler/dto/request"
	resdto "ordersaga/internal/handler/dto/response"
	"ordersaga/internal/usecase/commands"
	"ordersaga/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponHandler struct {
	couponUseCase commands.CouponCommands
	couponQueries queries.CouponQueries
}

func NewCouponHandler(couponUseCase commands.CouponCommands, couponQueries queries.CouponQueries) *CouponHandler {
	return &CouponHandler{
		couponUseCase: couponUseCase,
		couponQueries: couponQueries,
	}
}

// @Summary Request coupon issuance
// @Description Join the FIFO issuance queue; the outcome is polled separately
// @Tags coupons
// @Accept json
// @Produce json
// @Param id path string true "Coupon ID"
// @Param request body reqdto.IssueCouponRequest true "Issuance request"
// @Success 202 {object} resdto.EnqueueIssuanceResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /coupons/{id}/issuances [post]
func (h *CouponHandler) RequestIssuance(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID format",
		})
		return
	}

	var req reqdto.IssueCouponRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.couponUseCase.EnqueueIssuance(c.Request.Context(), couponID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if !result.Accepted {
		c.JSON(http.StatusConflict, resdto.EnqueueIssuanceResponse{
			Accepted: false,
			Position: result.Position,
		})
		return
	}

	c.JSON(http.StatusAccepted, resdto.EnqueueIssuanceResponse{
		Accepted: true,
		Position: result.Position,
	})
}

// @Summary Poll issuance status
// @Description Read the issuance outcome or the current queue position
// @Tags coupons
// @Produce json
// @Param id path string true "Coupon ID"
// @Param userId path string true "User ID"
// @Success 200 {object} resdto.IssuanceStatusResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /coupons/{id}/issuances/{userId} [get]
func (h *CouponHandler) GetIssuanceStatus(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID format",
		})
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	status, err := h.couponQueries.IssuanceStatus(c.Request.Context(), couponID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if status.Result == nil && !status.Waiting {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No issuance request found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromIssuanceStatus(status))
}
