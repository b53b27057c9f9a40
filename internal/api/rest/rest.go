package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/openmarket/marketplace-api/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth)
	router.GET("/health", handler.HealthCheck)

	// Bundle endpoints
	bundleGroup := router.Group("/bundle")
	{
		// Public reads
		bundleGroup.POST("/getBundleByID", handler.GetBundleByID)
		bundleGroup.POST("/fetchBundles", handler.FetchBundles)
		bundleGroup.POST("/increaseViews", handler.IncreaseViews)

		// Bundle creation (requires wallet authentication)
		bundleGroup.POST("/createBundle", middleware.Auth(authCfg), handler.CreateBundle)

		// Sale application (requires tracker API key)
		bundleGroup.POST("/removeItemFromBundle", middleware.APIKeyAuth(authCfg), handler.RemoveItemFromBundle)
	}

	// Listing endpoints (requires wallet authentication)
	listingGroup := router.Group("/listing")
	{
		listingGroup.POST("/getListings", middleware.Auth(authCfg), handler.GetListings)
	}

	// IPFS endpoints
	ipfsGroup := router.Group("/ipfs")
	{
		ipfsGroup.GET("/ipfstest", handler.IPFSTest)
		ipfsGroup.GET("/test", middleware.Auth(authCfg), handler.APITest)

		// Uploads (require wallet authentication)
		ipfsGroup.POST("/uploadImage2Server", middleware.Auth(authCfg), handler.UploadNFTImage)
		ipfsGroup.POST("/uploadBundleImage2Server", middleware.Auth(authCfg), handler.UploadBundleImage)
		ipfsGroup.POST("/uploadBannerImage2Server", middleware.Auth(authCfg), handler.UploadBannerImage)
		ipfsGroup.POST("/uploadCollectionImage2Server", middleware.Auth(authCfg), handler.UploadCollectionImage)
	}
}
