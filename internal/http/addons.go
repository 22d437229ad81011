package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/addons"
)

// AddonsController serves the embedded operator add-on templates.
type AddonsController struct {
	addons []addons.Addon
}

// NewAddonsController loads the templates once.
func NewAddonsController() (*AddonsController, error) {
	loaded, err := addons.Load()
	if err != nil {
		return nil, err
	}
	return &AddonsController{addons: loaded}, nil
}

// List returns every add-on template.
func (ac *AddonsController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"addons": ac.addons})
}
