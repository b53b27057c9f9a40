package rest

import (
	"errors"
	"fmt"

	"github.com/openmarket/marketplace-api/internal/domain"
)

// BundleItemPayload is one requested bundle item
type BundleItemPayload struct {
	Address string `json:"address"`
	TokenID string `json:"tokenID"`
	Supply  int64  `json:"supply"`
}

// CreateBundleRequest is the POST /bundle/createBundle body
type CreateBundleRequest struct {
	Name  string              `json:"name"`
	Price float64             `json:"price"`
	Items []BundleItemPayload `json:"items"`
}

// Validate checks the request fields
func (r *CreateBundleRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("Cannot create an empty bundle")
	}
	if r.Price <= 0 {
		return errors.New("Price cannot be under 0")
	}
	for _, item := range r.Items {
		if !domain.ValidAddress(item.Address) {
			return fmt.Errorf("invalid contract address: %s", item.Address)
		}
		if item.TokenID == "" {
			return errors.New("missing token ID")
		}
	}
	return nil
}

// DomainItems converts the payload items with normalized addresses
func (r *CreateBundleRequest) DomainItems() []domain.BundleItemRequest {
	items := make([]domain.BundleItemRequest, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.BundleItemRequest{
			ContractAddress: domain.NormalizeAddress(item.Address),
			TokenID:         item.TokenID,
			Supply:          item.Supply,
		}
	}
	return items
}

// BundleIDRequest carries a bundle identifier
type BundleIDRequest struct {
	BundleID string `json:"bundleID"`
}

// Validate checks the request fields
func (r *BundleIDRequest) Validate() error {
	if r.BundleID == "" {
		return errors.New("missing bundle ID")
	}
	return nil
}

// RemoveItemRequest is the POST /bundle/removeItemFromBundle body, sent by
// the sales tracker after a fill
type RemoveItemRequest struct {
	NFT      string `json:"nft"`
	TokenID  string `json:"tokenID"`
	Quantity int64  `json:"quantity"`
	Seller   string `json:"seller"`
}

// Validate checks the request fields
func (r *RemoveItemRequest) Validate() error {
	if !domain.ValidAddress(r.NFT) {
		return fmt.Errorf("invalid contract address: %s", r.NFT)
	}
	if r.TokenID == "" {
		return errors.New("missing token ID")
	}
	if r.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if !domain.ValidAddress(r.Seller) {
		return fmt.Errorf("invalid seller address: %s", r.Seller)
	}
	return nil
}

// SaleEvent converts the request into a normalized sale event
func (r *RemoveItemRequest) SaleEvent() *domain.SaleEvent {
	event := &domain.SaleEvent{
		ContractAddress: r.NFT,
		TokenID:         r.TokenID,
		Quantity:        r.Quantity,
		Seller:          r.Seller,
	}
	event.Normalize()
	return event
}

// FetchBundlesRequest is the POST /bundle/fetchBundles body
type FetchBundlesRequest struct {
	Step                int      `json:"step"`
	CollectionAddresses []string `json:"collectionAddresses"`
	SortBy              string   `json:"sortby"`
	Category            string   `json:"category"`
}

// Validate checks the request fields
func (r *FetchBundlesRequest) Validate() error {
	if r.Step < 0 {
		return errors.New("step cannot be negative")
	}
	if r.SortBy != "" && !domain.SortKey(r.SortBy).Valid() {
		return fmt.Errorf("unknown sort key: %s", r.SortBy)
	}
	return nil
}

// GetListingsRequest is the POST /listing/getListings body
type GetListingsRequest struct {
	Address string `json:"address"`
}

// Validate checks the request fields
func (r *GetListingsRequest) Validate() error {
	if !domain.ValidAddress(r.Address) {
		return fmt.Errorf("invalid address: %s", r.Address)
	}
	return nil
}

// UploadNFTImageRequest is the POST /ipfs/uploadImage2Server body
type UploadNFTImageRequest struct {
	Image       string `json:"image"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

// Validate checks the request fields
func (r *UploadNFTImageRequest) Validate() error {
	if r.Image == "" {
		return errors.New("missing image data")
	}
	if r.Name == "" {
		return errors.New("missing name")
	}
	return nil
}

// UploadBundleImageRequest is the POST /ipfs/uploadBundleImage2Server body
type UploadBundleImageRequest struct {
	ImgData     string `json:"imgData"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// Validate checks the request fields
func (r *UploadBundleImageRequest) Validate() error {
	if r.ImgData == "" {
		return errors.New("missing image data")
	}
	if r.Name == "" {
		return errors.New("missing name")
	}
	if !domain.ValidAddress(r.Address) {
		return fmt.Errorf("invalid address: %s", r.Address)
	}
	return nil
}

// UploadBannerImageRequest is the POST /ipfs/uploadBannerImage2Server body
type UploadBannerImageRequest struct {
	ImgData string `json:"imgData"`
}

// Validate checks the request fields
func (r *UploadBannerImageRequest) Validate() error {
	if r.ImgData == "" {
		return errors.New("missing image data")
	}
	return nil
}

// UploadCollectionImageRequest is the POST /ipfs/uploadCollectionImage2Server body
type UploadCollectionImageRequest struct {
	ImgData        string `json:"imgData"`
	CollectionName string `json:"collectionName"`
}

// Validate checks the request fields
func (r *UploadCollectionImageRequest) Validate() error {
	if r.ImgData == "" {
		return errors.New("missing image data")
	}
	if r.CollectionName == "" {
		return errors.New("missing collection name")
	}
	return nil
}
