package proofs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Proof is a stored payment receipt together with its decoded payload.
type Proof struct {
	LeadID      string    `json:"lead_id"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	DataURI     string    `json:"data_uri"`
	CreatedAt   time.Time `json:"created_at"`
	Data        []byte    `json:"-"`
}

// Service manages the payment proof attached to a single lead.
type Service interface {
	Attach(ctx context.Context, leadID string, file File) (*Proof, error)
	Get(ctx context.Context, leadID string) (*Proof, error)
	Delete(ctx context.Context, leadID string) error
}

type service struct {
	repo     Repository
	tx       txRunner
	maxBytes int64
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, tx txRunner, maxBytes int64, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("proofs repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &service{
		repo:     repo,
		tx:       tx,
		maxBytes: maxBytes,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Attach(ctx context.Context, leadID string, file File) (*Proof, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	contentType, err := Validate(file, s.maxBytes)
	if err != nil {
		return nil, err
	}
	dataURI := EncodeDataURI(contentType, file.Data)

	var stored *models.PaymentProof
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.LeadExists(ctx, leadID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
		}
		stored, err = repo.Replace(ctx, leadID, dataURI, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment proof")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithLeadID(ctx, leadID), map[string]any{
		"content_type": contentType,
		"size":         len(file.Data),
	})
	s.logg.Info(logCtx, "payment proof attached")

	return &Proof{
		LeadID:      stored.LeadID,
		ContentType: contentType,
		Size:        len(file.Data),
		DataURI:     stored.Comprovante,
		CreatedAt:   stored.CreatedAt,
		Data:        file.Data,
	}, nil
}

func (s *service) Get(ctx context.Context, leadID string) (*Proof, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	stored, err := s.repo.Find(ctx, leadID)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "payment proof not found", "load payment proof")
	}
	return FromModel(stored)
}

func (s *service) Delete(ctx context.Context, leadID string) error {
	if strings.TrimSpace(leadID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	if err := s.repo.Delete(ctx, leadID); err != nil {
		return pkgerrors.FromStore(err, "payment proof not found", "delete payment proof")
	}
	s.logg.Info(s.logg.WithLeadID(ctx, leadID), "payment proof deleted")
	return nil
}

// FromModel decodes a stored proof row.
func FromModel(m *models.PaymentProof) (*Proof, error) {
	file, err := DecodeDataURI(m.Comprovante)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode payment proof")
	}
	return &Proof{
		LeadID:      m.LeadID,
		ContentType: file.ContentType,
		Size:        len(file.Data),
		DataURI:     m.Comprovante,
		CreatedAt:   m.CreatedAt,
		Data:        file.Data,
	}, nil
}
