// Package media stages uploaded images on disk, pins them to IPFS and
// persists the resulting hashes.
package media

import (
	"context"
	"crypto/rand"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/ipfs"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/store"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

// CollectionLabel is stamped into every pinned token metadata document
const CollectionLabel = "OpenMarket Collection"

// Config holds upload staging configuration
type Config struct {
	// UploadDir is the staging directory for decoded images. Empty means
	// the system temp directory.
	UploadDir string
}

// TokenMetadata is the JSON document pinned alongside an NFT image
type TokenMetadata struct {
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Description string           `json:"description"`
	Properties  MetadataProperty `json:"properties"`
}

// MetadataProperty carries the creator-supplied token attributes
type MetadataProperty struct {
	Symbol     string `json:"symbol"`
	Address    string `json:"address"`
	CreatedAt  string `json:"createdAt"`
	Collection string `json:"collection"`
}

// NFTUploadResult carries the gateway URLs of a pinned image and its metadata
type NFTUploadResult struct {
	FileHash string `json:"fileHash"`
	JSONHash string `json:"jsonHash"`
}

// Service pins uploaded marketplace images
type Service interface {
	// UploadNFTImage pins a creator's image plus a metadata document
	// referencing it, and returns gateway URLs for both
	UploadNFTImage(ctx context.Context, address, name, description, symbol, imageDataURI string) (*NFTUploadResult, error)

	// UploadBundleImage pins a bundle cover image and creates a bundle row
	// carrying its hash
	UploadBundleImage(ctx context.Context, address, name, description, imageDataURI string) (*schema.Bundle, error)

	// UploadBannerImage pins a profile banner and stores its hash on the
	// uploader's account when one exists
	UploadBannerImage(ctx context.Context, address, imageDataURI string) (string, error)

	// UploadCollectionImage pins a collection logo and returns its hash
	UploadCollectionImage(ctx context.Context, address, collectionName, imageDataURI string) (string, error)
}

type service struct {
	cfg    Config
	pinner ipfs.Pinner
	store  store.Store
	fs     adapter.FileSystem
	clock  adapter.Clock
}

// NewService creates a media upload service
func NewService(cfg Config, pinner ipfs.Pinner, s store.Store, fs adapter.FileSystem, clock adapter.Clock) Service {
	return &service{cfg: cfg, pinner: pinner, store: s, fs: fs, clock: clock}
}

// UploadNFTImage pins a creator's image plus its metadata document
func (s *service) UploadNFTImage(ctx context.Context, address, name, description, symbol, imageDataURI string) (*NFTUploadResult, error) {
	filePin, err := s.stageAndPin(ctx, imageDataURI, ipfs.PinOptions{
		Name: name,
		Keyvalues: map[string]string{
			"address": address,
			"symbol":  symbol,
		},
	})
	if err != nil {
		return nil, err
	}

	metadata := TokenMetadata{
		Name:        name,
		Image:       ipfs.GatewayURI + filePin.IpfsHash,
		Description: description,
		Properties: MetadataProperty{
			Symbol:     symbol,
			Address:    address,
			CreatedAt:  s.clock.Now().UTC().Format("15:04:05 MST"),
			Collection: CollectionLabel,
		},
	}
	jsonPin, err := s.pinner.PinJSON(ctx, metadata, ipfs.PinOptions{
		Name:      name,
		Keyvalues: map[string]string{"address": address},
	})
	if err != nil {
		return nil, err
	}

	return &NFTUploadResult{
		FileHash: ipfs.GatewayURI + filePin.IpfsHash,
		JSONHash: ipfs.GatewayURI + jsonPin.IpfsHash,
	}, nil
}

// UploadBundleImage pins a bundle cover image and creates a bundle row
func (s *service) UploadBundleImage(ctx context.Context, address, name, description, imageDataURI string) (*schema.Bundle, error) {
	pin, err := s.stageAndPin(ctx, imageDataURI, ipfs.PinOptions{
		Name: name,
		Keyvalues: map[string]string{
			"bundleName": name,
			"address":    address,
		},
	})
	if err != nil {
		return nil, err
	}

	bundle := &schema.Bundle{
		ID:          ulid.MustNew(ulid.Timestamp(s.clock.Now()), rand.Reader).String(),
		Name:        name,
		Description: description,
		Owner:       address,
		Creator:     address,
		ImageHash:   ipfs.GatewayURI + pin.IpfsHash,
		ListedAt:    domain.UnlistedAt,
	}
	if err := s.store.CreateBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("failed to save bundle: %w", err)
	}
	return bundle, nil
}

// UploadBannerImage pins a profile banner and stores its hash when the
// uploader has an account row
func (s *service) UploadBannerImage(ctx context.Context, address, imageDataURI string) (string, error) {
	pin, err := s.stageAndPin(ctx, imageDataURI, ipfs.PinOptions{Name: address})
	if err != nil {
		return "", err
	}

	account, err := s.store.GetAccount(ctx, address)
	if err != nil {
		return "", err
	}
	if account != nil {
		if err := s.store.UpdateAccountBannerHash(ctx, address, ipfs.GatewayURI+pin.IpfsHash); err != nil {
			return "", err
		}
	}
	return pin.IpfsHash, nil
}

// UploadCollectionImage pins a collection logo
func (s *service) UploadCollectionImage(ctx context.Context, address, collectionName, imageDataURI string) (string, error) {
	pin, err := s.stageAndPin(ctx, imageDataURI, ipfs.PinOptions{
		Name: collectionName,
		Keyvalues: map[string]string{
			"bundleName": collectionName,
			"address":    address,
		},
	})
	if err != nil {
		return "", err
	}
	return pin.IpfsHash, nil
}

// stageAndPin decodes a data URI, stages it on disk, pins the staged file
// and removes it afterwards
func (s *service) stageAndPin(ctx context.Context, imageDataURI string, opts ipfs.PinOptions) (*ipfs.PinResult, error) {
	image, err := DecodeImageDataURI(imageDataURI)
	if err != nil {
		return nil, err
	}

	dir := s.cfg.UploadDir
	if dir == "" {
		dir = s.fs.TempDir()
	}
	fileName := uuid.NewString() + image.Extension
	stagedPath := filepath.Join(dir, fileName)

	if err := s.fs.WriteFile(stagedPath, image.Data); err != nil {
		return nil, fmt.Errorf("failed to save an image file: %w", err)
	}
	defer func() {
		if err := s.fs.Remove(stagedPath); err != nil {
			logger.WarnCtx(ctx, "failed to remove staged image", zap.Error(err), zap.String("path", stagedPath))
		}
	}()

	f, err := s.fs.Open(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen staged image: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WarnCtx(ctx, "failed to close staged image", zap.Error(err), zap.String("path", stagedPath))
		}
	}()

	pin, err := s.pinner.PinFile(ctx, f, fileName, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to pin file to ipfs: %w", err)
	}
	return pin, nil
}
