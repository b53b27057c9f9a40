package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmarket/marketplace-api/internal/api/middleware"
	"github.com/openmarket/marketplace-api/internal/bundle"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/ipfs"
	"github.com/openmarket/marketplace-api/internal/media"
	"github.com/openmarket/marketplace-api/internal/store"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// CreateBundle assembles a bundle from the caller's holdings
	// POST /bundle/createBundle
	CreateBundle(c *gin.Context)

	// GetBundleByID retrieves a bundle and its items
	// POST /bundle/getBundleByID
	GetBundleByID(c *gin.Context)

	// RemoveItemFromBundle applies a sale reported by the tracker
	// POST /bundle/removeItemFromBundle
	RemoveItemFromBundle(c *gin.Context)

	// FetchBundles retrieves a filtered, sorted page of bundles
	// POST /bundle/fetchBundles
	FetchBundles(c *gin.Context)

	// IncreaseViews increments a bundle's view counter
	// POST /bundle/increaseViews
	IncreaseViews(c *gin.Context)

	// GetListings retrieves an owner's marketplace listings
	// POST /listing/getListings
	GetListings(c *gin.Context)

	// IPFSTest verifies the pinning service credentials
	// GET /ipfs/ipfstest
	IPFSTest(c *gin.Context)

	// APITest reports that the authenticated API surface is up
	// GET /ipfs/test
	APITest(c *gin.Context)

	// UploadNFTImage pins a creator image plus its metadata document
	// POST /ipfs/uploadImage2Server
	UploadNFTImage(c *gin.Context)

	// UploadBundleImage pins a bundle cover image and creates the bundle row
	// POST /ipfs/uploadBundleImage2Server
	UploadBundleImage(c *gin.Context)

	// UploadBannerImage pins a profile banner image
	// POST /ipfs/uploadBannerImage2Server
	UploadBannerImage(c *gin.Context)

	// UploadCollectionImage pins a collection logo image
	// POST /ipfs/uploadCollectionImage2Server
	UploadCollectionImage(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	bundles bundle.Service
	uploads media.Service
	pinner  ipfs.Pinner
	store   store.Store
}

// NewHandler creates a new REST API handler
func NewHandler(bundles bundle.Service, uploads media.Service, pinner ipfs.Pinner, s store.Store) Handler {
	return &handler{
		bundles: bundles,
		uploads: uploads,
		pinner:  pinner,
		store:   s,
	}
}

// CreateBundle assembles a bundle from the caller's holdings
func (h *handler) CreateBundle(c *gin.Context) {
	owner, ok := middleware.WalletAddress(c)
	if !ok {
		respondFailed(c, "unauthorized")
		return
	}

	var req CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	bundleID, failures, err := h.bundles.CreateBundle(c.Request.Context(), owner, req.Name, req.Price, req.DomainItems())
	switch {
	case errors.Is(err, domain.ErrEmptyBundle):
		respondFailed(c, "Cannot create an empty bundle")
		return
	case errors.Is(err, domain.ErrInvalidPrice):
		respondFailed(c, "Price cannot be under 0")
		return
	case err != nil:
		respondFailedErr(c, err)
		return
	}

	if len(failures) > 0 {
		respondFailed(c, failures[0].String())
		return
	}

	respondSuccess(c, bundleID)
}

// GetBundleByID retrieves a bundle and its items
func (h *handler) GetBundleByID(c *gin.Context) {
	var req BundleIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	b, items, err := h.bundles.GetBundle(c.Request.Context(), req.BundleID)
	if err != nil {
		if errors.Is(err, domain.ErrBundleNotFound) {
			respondFailed(c, "")
			return
		}
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, gin.H{
		"bundle":         b,
		"bundleHoldings": items,
	})
}

// RemoveItemFromBundle applies a sale reported by the tracker
func (h *handler) RemoveItemFromBundle(c *gin.Context) {
	var req RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	if err := h.bundles.RemoveFromBundles(c.Request.Context(), req.SaleEvent()); err != nil {
		respondFailedErr(c, err)
		return
	}

	respondSuccessEmpty(c)
}

// FetchBundles retrieves a filtered, sorted page of bundles
func (h *handler) FetchBundles(c *gin.Context) {
	var req FetchBundlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	bundles, err := h.bundles.ListBundles(c.Request.Context(), bundle.ListQuery{
		Category:    req.Category,
		Collections: req.CollectionAddresses,
		SortKey:     domain.SortKey(req.SortBy),
		Step:        req.Step,
	})
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, bundles)
}

// IncreaseViews increments a bundle's view counter
func (h *handler) IncreaseViews(c *gin.Context) {
	var req BundleIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	viewed, err := h.bundles.IncrementViews(c.Request.Context(), req.BundleID)
	if err != nil {
		if errors.Is(err, domain.ErrBundleNotFound) {
			respondFailed(c, "")
			return
		}
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, viewed)
}

// GetListings retrieves an owner's marketplace listings
func (h *handler) GetListings(c *gin.Context) {
	var req GetListingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	listings, err := h.store.GetListingsByOwner(c.Request.Context(), domain.NormalizeAddress(req.Address))
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, listings)
}

// IPFSTest verifies the pinning service credentials
func (h *handler) IPFSTest(c *gin.Context) {
	if err := h.pinner.TestAuthentication(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"result": "failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": "authenticated",
	})
}

// APITest reports that the authenticated API surface is up
func (h *handler) APITest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apistatus": "running",
	})
}

// UploadNFTImage pins a creator image plus its metadata document
func (h *handler) UploadNFTImage(c *gin.Context) {
	address, ok := middleware.WalletAddress(c)
	if !ok {
		respondFailed(c, "unauthorized")
		return
	}

	var req UploadNFTImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "failedParsingForm")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	result, err := h.uploads.UploadNFTImage(c.Request.Context(), address, req.Name, req.Description, req.Symbol, req.Image)
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         statusSuccess,
		"uploadedCounts": 2,
		"fileHash":       result.FileHash,
		"jsonHash":       result.JSONHash,
	})
}

// UploadBundleImage pins a bundle cover image and creates the bundle row
func (h *handler) UploadBundleImage(c *gin.Context) {
	var req UploadBundleImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "failedParsingForm")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	b, err := h.uploads.UploadBundleImage(c.Request.Context(), domain.NormalizeAddress(req.Address), req.Name, req.Description, req.ImgData)
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"bundle": b,
	})
}

// UploadBannerImage pins a profile banner image
func (h *handler) UploadBannerImage(c *gin.Context) {
	address, ok := middleware.WalletAddress(c)
	if !ok {
		respondFailed(c, "unauthorized")
		return
	}

	var req UploadBannerImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "failedParsingForm")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	hash, err := h.uploads.UploadBannerImage(c.Request.Context(), address, req.ImgData)
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, hash)
}

// UploadCollectionImage pins a collection logo image
func (h *handler) UploadCollectionImage(c *gin.Context) {
	address, ok := middleware.WalletAddress(c)
	if !ok {
		respondFailed(c, "unauthorized")
		return
	}

	var req UploadCollectionImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailed(c, "failedParsingForm")
		return
	}
	if err := req.Validate(); err != nil {
		respondFailed(c, err.Error())
		return
	}

	hash, err := h.uploads.UploadCollectionImage(c.Request.Context(), address, req.CollectionName, req.ImgData)
	if err != nil {
		respondFailedErr(c, err)
		return
	}

	respondSuccess(c, hash)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
