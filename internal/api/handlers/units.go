package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"heat-dispatch/internal/api/models"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/model"
)

// UnitsHandler serves the server catalog.
type UnitsHandler struct {
	grid *model.HeatingGrid
}

func NewUnitsHandler(grid *model.HeatingGrid) *UnitsHandler {
	return &UnitsHandler{grid: grid}
}

// ListUnits handles GET /api/v1/units
func (h *UnitsHandler) ListUnits(c *gin.Context) {
	resp := models.UnitsResponse{Units: []models.UnitInfo{}}
	if h.grid != nil {
		resp.Grid = h.grid.Name
		resp.Buildings = h.grid.Buildings
		for _, u := range h.grid.Units {
			resp.Units = append(resp.Units, models.NewUnitInfo(u))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// MeritOrder handles GET /api/v1/units/merit-order?price=&select=
func (h *UnitsHandler) MeritOrder(c *gin.Context) {
	rawPrice := c.Query("price")
	if rawPrice == "" {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "price query parameter is required", nil)
		return
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "price must be a number", map[string]any{"price": rawPrice})
		return
	}

	grid := h.grid
	if grid == nil {
		grid = &model.HeatingGrid{}
	}
	if sel := c.Query("select"); sel != "" {
		selected, err := grid.Select(strings.Split(sel, ","))
		if err != nil {
			respondErr(c, err)
			return
		}
		grid = selected
	}

	ranked := dispatch.MeritOrder(grid.Units, price)
	resp := models.MeritOrderResponse{
		ElectricityPrice: price,
		Units:            make([]models.RankedUnit, len(ranked)),
	}
	for i, r := range ranked {
		resp.Units[i] = models.RankedUnit{
			Rank:    i + 1,
			Name:    r.Unit.Name,
			Role:    r.Unit.Role(),
			NetCost: dispatch.Round2(r.NetCost),
			MaxHeat: r.Unit.MaxHeat,
		}
	}
	c.JSON(http.StatusOK, resp)
}
