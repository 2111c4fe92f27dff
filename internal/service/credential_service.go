package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

type credentialService struct {
	repo     ports.CredentialRepository
	cache    ports.CredentialCache
	encSvc   ports.EncryptionService
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewCredentialService creates the credential store service.
// cache may be nil, in which case every Load reads the database.
func NewCredentialService(
	repo ports.CredentialRepository,
	cache ports.CredentialCache,
	encSvc ports.EncryptionService,
	cacheTTL time.Duration,
	log zerolog.Logger,
) ports.CredentialService {
	return &credentialService{
		repo:     repo,
		cache:    cache,
		encSvc:   encSvc,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *credentialService) Create(ctx context.Context, in ports.CredentialInput) (*domain.Credential, error) {
	if details := validateNames(&in.MerchantID, &in.MerchantName); len(details) > 0 {
		return nil, apperror.ValidationFields(details)
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if n > 0 {
		return nil, apperror.ErrAlreadyExists()
	}

	cred := &domain.Credential{
		MerchantID:   in.MerchantID,
		MerchantName: in.MerchantName,
		APIUsername:  in.APIUsername,
	}
	if err := s.seal(cred, &in.APIPassword, &in.SharedSecret); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cred); err != nil {
		// Lost a race against a concurrent create.
		if errors.Is(err, domain.ErrCredentialExists) {
			return nil, apperror.ErrAlreadyExists()
		}
		return nil, apperror.ErrDatabaseError(err)
	}

	s.invalidate(ctx)
	s.log.Info().Int64("credential_id", cred.ID).Str("merchant_id", cred.MerchantID).Msg("credential created")
	return cred, nil
}

func (s *credentialService) Update(ctx context.Context, id int64, in ports.CredentialPatch) (*domain.Credential, error) {
	if details := validateNames(in.MerchantID, in.MerchantName); len(details) > 0 {
		return nil, apperror.ValidationFields(details)
	}

	cred, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if cred == nil {
		return nil, apperror.ErrNotFound("NPS payment configuration")
	}

	if in.MerchantID != nil {
		cred.MerchantID = *in.MerchantID
	}
	if in.MerchantName != nil {
		cred.MerchantName = *in.MerchantName
	}
	if in.APIUsername != nil {
		cred.APIUsername = *in.APIUsername
	}
	if err := s.seal(cred, in.APIPassword, in.SharedSecret); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cred); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.invalidate(ctx)
	s.log.Info().Int64("credential_id", cred.ID).Msg("credential updated")
	return cred, nil
}

func (s *credentialService) Get(ctx context.Context, id int64) (*domain.Credential, error) {
	cred, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if cred == nil {
		return nil, apperror.ErrNotFound("NPS payment configuration")
	}
	return cred, nil
}

func (s *credentialService) List(ctx context.Context) ([]domain.Credential, error) {
	cred, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if cred == nil {
		return []domain.Credential{}, nil
	}
	return []domain.Credential{*cred}, nil
}

// Load returns the decrypted credential, reading through the cache.
// A cache failure degrades to a database read.
func (s *credentialService) Load(ctx context.Context) (*domain.GatewayCredential, error) {
	var cred *domain.Credential
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("credential cache read failed")
		}
		cred = cached
	}

	if cred == nil {
		stored, err := s.repo.Get(ctx)
		if err != nil {
			return nil, apperror.ErrDatabaseError(err)
		}
		if stored == nil {
			return nil, apperror.ErrConfigurationMissing()
		}
		cred = stored
		if s.cache != nil {
			if err := s.cache.Set(ctx, cred, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("credential cache write failed")
			}
		}
	}

	password, err := s.encSvc.Decrypt(cred.APIPasswordEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt api password: %w", err))
	}
	secret, err := s.encSvc.Decrypt(cred.SharedSecretEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt shared secret: %w", err))
	}

	return &domain.GatewayCredential{
		MerchantID:   cred.MerchantID,
		MerchantName: cred.MerchantName,
		APIUsername:  cred.APIUsername,
		APIPassword:  password,
		SharedSecret: secret,
	}, nil
}

// seal encrypts whichever of password and secret are non-nil into cred.
func (s *credentialService) seal(cred *domain.Credential, password, secret *string) error {
	if password != nil {
		enc, err := s.encSvc.Encrypt(*password)
		if err != nil {
			return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt api password: %w", err))
		}
		cred.APIPasswordEnc = enc
	}
	if secret != nil {
		enc, err := s.encSvc.Encrypt(*secret)
		if err != nil {
			return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt shared secret: %w", err))
		}
		cred.SharedSecretEnc = enc
	}
	return nil
}

func (s *credentialService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("credential cache invalidation failed")
	}
}

// validateNames rejects a merchant id or name that is blank after trimming.
// Nil pointers are not checked.
func validateNames(merchantID, merchantName *string) []apperror.Detail {
	var details []apperror.Detail
	if merchantID != nil && strings.TrimSpace(*merchantID) == "" {
		details = append(details, fieldError("merchant_id", "Merchant ID cannot be empty"))
	}
	if merchantName != nil && strings.TrimSpace(*merchantName) == "" {
		details = append(details, fieldError("merchant_name", "Merchant name cannot be empty"))
	}
	return details
}
