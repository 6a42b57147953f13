package vertical

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicInfo is the client-facing view of a vertical.
type PublicInfo struct {
	Slug        string             `json:"slug"`
	Name        string             `json:"name"`
	Domain      string             `json:"domain"`
	BrandColor  string             `json:"brand_color"`
	MetaTitle   string             `json:"meta_title"`
	SEO         SEO                `json:"seo"`
	Categories  []Category         `json:"categories"`
	Terminology Terminology        `json:"terminology"`
	Valuation   ValuationMultiples `json:"valuation"`
}

// Info projects v for clients.
func Info(v *Vertical) PublicInfo {
	return PublicInfo{
		Slug:        v.Slug,
		Name:        v.Name,
		Domain:      v.Domain,
		BrandColor:  v.BrandColor,
		MetaTitle:   v.MetaTitle(),
		SEO:         v.SEO,
		Categories:  v.Categories,
		Terminology: v.Terminology,
		Valuation:   v.Valuation,
	}
}

// Handler serves vertical metadata.
type Handler struct {
	reg *Registry
}

// NewHandler creates a handler over reg.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// RegisterRoutes mounts /vertical and /verticals.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vertical", h.Current)
	rg.GET("/verticals", h.List)
}

// Current returns the vertical resolved for this request.
func (h *Handler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, Info(FromContext(c, h.reg.Default())))
}

// List returns every vertical with its hostnames.
func (h *Handler) List(c *gin.Context) {
	type item struct {
		PublicInfo
		PrimaryHostname string   `json:"primary_hostname"`
		Hostnames       []string `json:"hostnames"`
	}
	all := h.reg.All()
	out := make([]item, 0, len(all))
	for _, v := range all {
		out = append(out, item{
			PublicInfo:      Info(v),
			PrimaryHostname: h.reg.PrimaryHostname(v.Slug),
			Hostnames:       h.reg.Hostnames(v.Slug),
		})
	}
	c.JSON(http.StatusOK, gin.H{"verticals": out})
}
