package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"eterno-store/internal/apperr"
	"eterno-store/internal/middleware"
	"eterno-store/internal/shop"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

const maxImageSide = 800

// --- GET: public shop front ---
func (h *Handler) ShopProducts(c *gin.Context) {
	products, err := h.shop.ListAvailable(c.Request.Context())
	if err != nil {
		h.fail(c, "ShopProducts", err)
		return
	}
	ok(c, gin.H{"products": products})
}

// --- GET: admin inventory, optional ?q= search ---
func (h *Handler) ListProducts(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	var err error
	var result any
	if q := c.Query("q"); q != "" {
		result, err = h.shop.SearchProducts(ctx, p, q)
	} else {
		result, err = h.shop.ListProducts(ctx, p)
	}
	if err != nil {
		h.fail(c, "ListProducts", err)
		return
	}
	ok(c, gin.H{"products": result})
}

// --- POST: Add a new product ---
func (h *Handler) CreateProduct(c *gin.Context) {
	var input shop.ProductInput
	if !h.bindJSON(c, "CreateProduct", &input) {
		return
	}
	product, err := h.shop.CreateProduct(c.Request.Context(), middleware.CurrentPrincipal(c), input)
	if err != nil {
		h.fail(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// --- PUT: partial update, only the fields sent change ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "UpdateProduct", err)
		return
	}
	var patch shop.ProductPatch
	if !h.bindJSON(c, "UpdateProduct", &patch) {
		return
	}
	product, err := h.shop.UpdateProduct(c.Request.Context(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		h.fail(c, "UpdateProduct", err)
		return
	}
	ok(c, gin.H{"message": "Product updated successfully", "product": product})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "DeleteProduct", err)
		return
	}
	if err := h.shop.DeleteProduct(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		h.fail(c, "DeleteProduct", err)
		return
	}
	ok(c, gin.H{"message": "Product deleted successfully"})
}

// --- GET: orders containing a product ---
func (h *Handler) ProductOrders(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "ProductOrders", err)
		return
	}
	ids, err := h.shop.ProductOrderIDs(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		h.fail(c, "ProductOrders", err)
		return
	}
	ok(c, gin.H{"order_ids": ids, "count": len(ids)})
}

// --- UPLOAD: product image, resized to fit 800x800 ---
func (h *Handler) UploadImage(c *gin.Context) {
	if err := middleware.CurrentPrincipal(c).RequireAdmin(); err != nil {
		h.fail(c, "UploadImage", err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.fail(c, "UploadImage", apperr.Validation("No file uploaded"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		h.fail(c, "UploadImage", apperr.Validation("Invalid file type. Allowed: jpg, jpeg, png, gif, webp"))
		return
	}

	src, err := file.Open()
	if err != nil {
		h.fail(c, "UploadImage", apperr.Validation("Could not read upload"))
		return
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		h.fail(c, "UploadImage", apperr.Validation("File is not a readable image"))
		return
	}
	img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.fail(c, "UploadImage", apperr.Internal("Failed to save file", err))
		return
	}
	// webp decodes but has no encoder, store it as png
	outExt := ext
	if outExt == ".webp" {
		outExt = ".png"
	}
	filename := uuid.NewString() + outExt
	if err := imaging.Save(img, filepath.Join(h.cfg.UploadDir, filename)); err != nil {
		h.fail(c, "UploadImage", apperr.Internal("Failed to save file", err))
		return
	}

	ok(c, gin.H{
		"message": "File uploaded successfully",
		"url":     fmt.Sprintf("%s/uploads/%s", strings.TrimRight(h.cfg.BaseURL, "/"), filename),
	})
}
