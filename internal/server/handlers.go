package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cafe-orders/internal/domain"
)

type loginReq struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	token, sess, err := s.auth.Login(role, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": sess.Role, "expiresAt": sess.ExpiresAt})
}

// parseStatuses accepts both repeated and comma separated status parameters.
func parseStatuses(values []string) ([]domain.OrderStatus, error) {
	var out []domain.OrderStatus
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			st, err := domain.ParseStatus(part)
			if err != nil {
				return nil, err
			}
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Server) handleListOrders(c *gin.Context) {
	statuses, err := parseStatuses(c.QueryArray("status"))
	if err != nil {
		s.fail(c, err)
		return
	}
	orders, err := s.orders.ListOrders(c.Request.Context(), domain.Filter{Statuses: statuses, Table: c.Query("table")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type createOrderReq struct {
	Table     string             `json:"table"`
	Notes     string             `json:"notes"`
	CashierID string             `json:"cashierId"`
	Items     []domain.DraftLine `json:"items"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	d := domain.Draft{Table: req.Table, Notes: req.Notes, CashierID: req.CashierID, Items: req.Items}
	o, err := s.orders.CreateOrder(c.Request.Context(), sessionOf(c), d)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	o, err := s.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	o, err := s.orders.UpdateOrderStatus(c.Request.Context(), sessionOf(c), c.Param("id"), to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleListProducts(c *gin.Context) {
	f := domain.ProductFilter{
		AvailableOnly: c.Query("available") == "true",
		Category:      c.Query("category"),
	}
	products, err := s.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	p, err := s.catalog.ResolveProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.tables.Names()})
}

func (s *Server) handleActivity(c *gin.Context) {
	if sessionOf(c).Role != domain.RoleAdmin {
		s.err(c, http.StatusForbidden, "forbidden", "activity log is admin only")
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.err(c, http.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.activity.ListActivity(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
