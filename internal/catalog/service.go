package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

var ErrInvalidInput = errors.New("invalid product input")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxTitleLength   = 200
	// MaxPrice is $999,999.99 in cents.
	MaxPrice         = 99_999_999
)

// Service validates catalog writes and normalizes list paging before
// delegating to the Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Product, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	in, err := normalize(in)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrNotFound
	}
	in, err := normalize(in)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func normalize(in ProductInput) (ProductInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return in, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if in.Price < 0 {
		return in, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Price > MaxPrice {
		return in, fmt.Errorf("%w: price exceeds %d cents", ErrInvalidInput, MaxPrice)
	}

	in.Description = blankToNil(in.Description)
	in.PDFURL = blankToNil(in.PDFURL)
	in.ThumbnailURL = blankToNil(in.ThumbnailURL)

	if err := checkURL("pdfUrl", in.PDFURL); err != nil {
		return in, err
	}
	if err := checkURL("thumbnailUrl", in.ThumbnailURL); err != nil {
		return in, err
	}
	return in, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func checkURL(field string, raw *string) error {
	if raw == nil {
		return nil
	}
	u, err := url.Parse(*raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s must be an absolute http(s) URL", ErrInvalidInput, field)
	}
	return nil
}
