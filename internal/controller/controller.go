package controller

import (
	"errors"
	"fmt"
	"net/http"

	"orders-service/internal/dto"
	"orders-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderService
	Query   *service.OrderQueryService
}

func NewOrderController(s *service.OrderService, q *service.OrderQueryService) *OrderController {
	return &OrderController{Service: s, Query: q}
}

// POST /orders
func (ctl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// validation is its own stage; the coordinator re-checks before writing
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /orders
func (ctl *OrderController) FindAll(c *gin.Context) {
	orders, err := ctl.Service.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:id — a missing id is an empty result, not an error
func (ctl *OrderController) FindOne(c *gin.Context) {
	order, err := ctl.Service.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PATCH /orders/:id
func (ctl *OrderController) Update(c *gin.Context) {
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DELETE /orders/:id
func (ctl *OrderController) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := ctl.Service.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("order %s removed", id)})
}

// GET /orders/searchId/:id
func (ctl *OrderController) SearchByID(c *gin.Context) {
	docs, err := ctl.Query.SearchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GET /orders/searchStatus/:status
func (ctl *OrderController) SearchByStatus(c *gin.Context) {
	docs, err := ctl.Query.SearchByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GET /orders/searchDateRange/:start/:end
func (ctl *OrderController) SearchByDateRange(c *gin.Context) {
	docs, err := ctl.Query.SearchByDateRange(c.Request.Context(), c.Param("start"), c.Param("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GET /orders/searchByItems?productId=&quantity=&unitPrice=
func (ctl *OrderController) SearchByItems(c *gin.Context) {
	var params dto.SearchByItemsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs, err := ctl.Query.SearchByItems(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSearch):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
