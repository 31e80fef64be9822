package api

import (
	"errors"
	"net/http"

	reqdto "ordersaga/internal/handler/dto/request"
	resdto "ordersaga/internal/handler/dto/response"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderUseCase commands.OrderCommands
}

func NewOrderHandler(orderUseCase commands.OrderCommands) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

// @Summary Create order
// @Description Place an order; stock, coupon and balance are settled before the response returns
// @Tags orders
// @Accept json
// @Produce json
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 504 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result := h.orderUseCase.CreateOrder(c.Request.Context(), req.ToCommand())
	if !result.Success {
		h.writeFailure(c, result)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOrderView(result.Order))
}

func (h *OrderHandler) writeFailure(c *gin.Context, result *commands.CreateOrderResult) {
	switch {
	case errors.Is(result.Cause, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order request",
		})
	case errors.Is(result.Cause, errs.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	case errors.Is(result.Cause, errs.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(result.Cause, errs.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Coupon not found",
		})
	case errors.Is(result.Cause, errs.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
		})
	case errors.Is(result.Cause, errs.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient balance",
		})
	case errors.Is(result.Cause, errs.ErrCouponUnavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Coupon cannot be used",
		})
	case errors.Is(result.Cause, errs.ErrConcurrencyTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "Order processing timed out",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
