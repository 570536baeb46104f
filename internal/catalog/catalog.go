// Package catalog manages item listings. Every mutation is gated by
// ownership of the item.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/borrowez/borrowez/internal/blob"
	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
	"github.com/borrowez/borrowez/internal/imaging"
	"github.com/borrowez/borrowez/internal/links"
	"github.com/borrowez/borrowez/internal/model"
	"github.com/borrowez/borrowez/internal/store"
	"github.com/borrowez/borrowez/internal/upload"
	"github.com/borrowez/borrowez/internal/validation"
)

// Fields are the caller-supplied attributes of an item, as submitted.
// Status is nil when the field was omitted entirely.
type Fields struct {
	Name        string  `form:"name" validate:"notblank"`
	Category    string  `form:"category" validate:"notblank"`
	RentPerHour string  `form:"rent_per_hour" validate:"notblank"`
	Location    string  `form:"location" validate:"notblank"`
	Phone       string  `form:"phone" validate:"notblank"`
	Status      *string `form:"status"`
}

// ImageUpload is an image submitted alongside item fields.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// Image is stored image content ready to serve.
type Image struct {
	Data []byte
	MIME string
}

// Service implements the item catalog.
type Service struct {
	db        *sql.DB
	blobs     blob.Store
	validator *validation.Validator
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a catalog. Each store or blob call is bounded by timeout.
func NewService(db *sql.DB, blobs blob.Store, v *validation.Validator, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		blobs:     blobs,
		validator: v,
		timeout:   timeout,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create lists a new item owned by the caller. An omitted status defaults
// to "available".
func (s *Service) Create(ctx context.Context, caller identity.Identity, f Fields, img *ImageUpload) (*model.Item, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrUnauthenticated
	}

	if f.Status == nil {
		status := model.ItemStatusAvailable
		f.Status = &status
	}
	item, err := s.buildItem(f)
	if err != nil {
		return nil, err
	}
	if err := validateImage(img); err != nil {
		return nil, err
	}

	now := s.now()
	item.OwnerID = caller.UserID
	item.OwnerName = caller.Name
	item.CreatedAt = now
	item.UpdatedAt = now

	if img != nil {
		ref, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		item.ImageRef = ref
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := store.CreateItem(sctx, s.db, item)
	if err != nil {
		s.logger.Error("creating item", "owner", caller.UserID, "error", err)
		s.releaseImage(ctx, item.ImageRef)
		return nil, domainerrors.Storage(err)
	}

	s.logger.Info("item created", "item", created.ID, "owner", caller.UserID)
	return created, nil
}

// Update replaces an item's fields. Ownership is checked before any field
// is validated. A new image is stored before the record is switched to it;
// the previous image is released only after the switch succeeds.
func (s *Service) Update(ctx context.Context, caller identity.Identity, itemID string, f Fields, img *ImageUpload) (*model.Item, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrUnauthenticated
	}

	existing, err := s.ownedItem(ctx, caller, itemID)
	if err != nil {
		return nil, err
	}

	if f.Status == nil {
		return nil, domainerrors.InvalidInputWithDetails("all fields are required",
			map[string]string{"status": "is required"})
	}
	updated, err := s.buildItem(f)
	if err != nil {
		return nil, err
	}
	if err := validateImage(img); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.OwnerID = existing.OwnerID
	updated.OwnerName = existing.OwnerName
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	updated.ImageRef = existing.ImageRef

	if img != nil {
		ref, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		updated.ImageRef = ref
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := store.UpdateItem(sctx, s.db, updated); err != nil {
		s.logger.Error("updating item", "item", itemID, "error", err)
		if img != nil {
			s.releaseImage(ctx, updated.ImageRef)
		}
		return nil, domainerrors.Storage(err)
	}

	if img != nil && existing.HasImage() {
		s.releaseImage(ctx, existing.ImageRef)
	}

	s.logger.Info("item updated", "item", itemID, "owner", caller.UserID)
	return updated, nil
}

// Delete removes an item and then releases its image. Borrow records that
// reference the item are left in place.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, itemID string) error {
	if caller.IsZero() {
		return domainerrors.ErrUnauthenticated
	}

	existing, err := s.ownedItem(ctx, caller, itemID)
	if err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := store.DeleteItem(sctx, s.db, itemID); err != nil {
		s.logger.Error("deleting item", "item", itemID, "error", err)
		return domainerrors.Storage(err)
	}

	s.releaseImage(ctx, existing.ImageRef)

	s.logger.Info("item deleted", "item", itemID, "owner", caller.UserID)
	return nil
}

// Get returns a single item. Browsing is not ownership-gated.
func (s *Service) Get(ctx context.Context, itemID string) (*model.Item, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	item, err := store.GetItem(sctx, s.db, itemID)
	if err != nil {
		s.logger.Error("getting item", "item", itemID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	if item == nil {
		return nil, domainerrors.NotFound("item not found")
	}
	return item, nil
}

// List returns every item, newest first.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := store.ListItems(sctx, s.db)
	if err != nil {
		s.logger.Error("listing items", "error", err)
		return nil, domainerrors.Storage(err)
	}
	return items, nil
}

// ListByOwner returns the items listed by ownerID, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := store.ListItemsByOwner(sctx, s.db, ownerID)
	if err != nil {
		s.logger.Error("listing items by owner", "owner", ownerID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	return items, nil
}

// Image returns the stored image of an item. With thumb set the image is
// downscaled; bytes that cannot be decoded are served as stored.
func (s *Service) Image(ctx context.Context, itemID string, thumb bool) (*Image, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.HasImage() {
		return nil, domainerrors.NotFound("item has no image")
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.blobs.Open(sctx, item.ImageRef)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, domainerrors.NotFound("image not found")
	}
	if err != nil {
		s.logger.Error("opening image", "item", itemID, "ref", item.ImageRef, "error", err)
		return nil, domainerrors.Storage(err)
	}

	if thumb {
		result, err := imaging.Thumbnail(data, imaging.ThumbnailDimension)
		if err == nil {
			return &Image{Data: result.Data, MIME: result.MIME}, nil
		}
		s.logger.Warn("thumbnail failed, serving original", "item", itemID, "error", err)
	}

	return &Image{Data: data, MIME: imaging.DetectMIME(data)}, nil
}

// Authorize reports whether caller may mutate itemID, without reading any
// field values. It returns the same errors Update and Delete would.
func (s *Service) Authorize(ctx context.Context, caller identity.Identity, itemID string) error {
	if caller.IsZero() {
		return domainerrors.ErrUnauthenticated
	}
	_, err := s.ownedItem(ctx, caller, itemID)
	return err
}

// ownedItem loads an item and checks the caller owns it.
func (s *Service) ownedItem(ctx context.Context, caller identity.Identity, itemID string) (*model.Item, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(item.OwnerID) {
		s.logger.Warn("item mutation by non-owner", "item", itemID, "caller", caller.UserID)
		return nil, domainerrors.Forbidden("you do not own this item")
	}
	return item, nil
}

// buildItem validates f and returns an item carrying its values.
func (s *Service) buildItem(f Fields) (*model.Item, error) {
	if err := s.validator.Validate(f); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*f.Status) == "" {
		return nil, domainerrors.InvalidInputWithDetails("all fields are required",
			map[string]string{"status": "is required"})
	}

	rent, err := parseRent(f.RentPerHour)
	if err != nil {
		return nil, err
	}

	return &model.Item{
		Name:         f.Name,
		Category:     f.Category,
		RentPerHour:  rent,
		LocationName: f.Location,
		Phone:        f.Phone,
		Status:       *f.Status,
		MapsLink:     links.MapsLink(f.Location),
	}, nil
}

func parseRent(raw string) (float64, error) {
	rent, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(rent) || math.IsInf(rent, 0) || rent <= 0 {
		return 0, domainerrors.InvalidInputWithDetails("rent per hour must be a positive number",
			map[string]string{"rent_per_hour": "must be a positive number"})
	}
	return rent, nil
}

func validateImage(img *ImageUpload) error {
	if img == nil {
		return nil
	}
	if err := upload.Validate(img.Filename, int64(len(img.Data))); err != nil {
		return domainerrors.InvalidUpload(err.Error())
	}
	return nil
}

func (s *Service) storeImage(ctx context.Context, img *ImageUpload) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ref, err := s.blobs.Put(sctx, img.Filename, img.Data)
	if err != nil {
		s.logger.Error("storing image", "filename", img.Filename, "error", err)
		return "", domainerrors.Storage(err)
	}
	return ref, nil
}

// releaseImage deletes a stored image. Failures are logged and swallowed.
func (s *Service) releaseImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.blobs.Delete(sctx, ref); err != nil {
		s.logger.Warn("releasing image", "ref", ref, "error", err)
	}
}
