package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

// MaxImageSize borne la taille des images produit acceptées.
const MaxImageSize = 5 << 20

type ProductHandler struct {
	catalog Catalog
	log     *slog.Logger
}

func NewProductHandler(catalog Catalog, log *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

// productForm lit les champs multipart du formulaire produit.
func productForm(c *gin.Context) (models.ProductUpdate, error) {
	in := models.ProductUpdate{
		CategoryID:  strings.TrimSpace(c.PostForm("categoryId")),
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return in, errors.New("prix invalide")
		}
		in.Price = &price
	}
	return in, nil
}

// imageUpload renvoie nil quand aucun fichier "image" n'est joint.
func imageUpload(c *gin.Context) (*services.ImageUpload, func(), error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, errors.New("image illisible")
	}
	if fh.Size > MaxImageSize {
		return nil, nil, errors.New("image trop volumineuse (5 Mo max)")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.New("image illisible")
	}
	return &services.ImageUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}

func (h *ProductHandler) Create(c *gin.Context) {
	in, err := productForm(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	img, closeImg, err := imageUpload(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeImg()

	p, err := h.catalog.CreateProduct(c.Request.Context(), in, img)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Produit créé")
	resp.Product = p
	c.JSON(http.StatusOK, resp)
}

// Update lit l'identifiant dans le champ productId du formulaire.
func (h *ProductHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.PostForm("productId"))
	if id == "" {
		badRequest(c, "productId requis")
		return
	}
	in, err := productForm(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	img, closeImg, err := imageUpload(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeImg()

	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, in, img)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Produit mis à jour")
	resp.Product = p
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Produit supprimé"))
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.Product = p
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) list(c *gin.Context, products []models.Product, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.ProductList = products
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetAll(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	h.list(c, products, err)
}

func (h *ProductHandler) GetByCategory(c *gin.Context) {
	products, err := h.catalog.ListProductsByCategory(c.Request.Context(), c.Param("id"))
	h.list(c, products, err)
}

func (h *ProductHandler) Search(c *gin.Context) {
	products, err := h.catalog.SearchProducts(c.Request.Context(), c.Query("searchValue"))
	h.list(c, products, err)
}
