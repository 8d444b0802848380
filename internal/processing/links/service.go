package links

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// Service owns link creation. Resolution lives in Resolver/RedirectService;
// this side writes through to the durable store only (the cache entry is
// created lazily by the first redirect).
type Service struct {
	linkRepo   LinkRepository
	codes      CodeGenerator
	codeLength int
	now        func() time.Time
}

func NewService(linkRepo LinkRepository, codes CodeGenerator, codeLength int) *Service {
	if codeLength <= 0 {
		codeLength = 7
	}

	return &Service{
		linkRepo:   linkRepo,
		codes:      codes,
		codeLength: codeLength,
		now:        time.Now,
	}
}

func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*Link, error) {
	normalizedURL, err := validateAndNormalizeURL(in.OriginalURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	link := &Link{
		ID:          uuid.New().String(),
		OriginalURL: normalizedURL,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   s.now().UTC(),
		OwnerID:     strings.TrimSpace(in.OwnerID),
	}

	if alias := strings.TrimSpace(in.CustomAlias); alias != "" {
		if err := validateAlias(alias); err != nil {
			return nil, err
		}
		link.Code = alias
		if err := s.linkRepo.Insert(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	const maxAttempts = 10
	for range maxAttempts {
		code, err := s.codes.Generate(s.codeLength)
		if err != nil {
			return nil, err
		}
		link.Code = code

		if err := s.linkRepo.Insert(ctx, link); err != nil {
			if err == ErrCodeTaken {
				continue
			}
			return nil, err
		}

		return link, nil
	}

	return nil, ErrCodeTaken
}

func validateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}
	if isReservedCode(alias) {
		return ErrReservedCode
	}
	return nil
}

func validateAndNormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	u.Fragment = ""
	return u.String(), nil
}
