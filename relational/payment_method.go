package relational

import (
	"context"
	"errors"
	"strings"
	"time"

	"elsahm-admin/apperr"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentMethod is a wallet top-up option shown in the mobile app.
type PaymentMethod struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name" gorm:"uniqueIndex;not null"`
	NameAr     string         `json:"name_ar"`
	Details    string         `json:"details"`
	Currencies pq.StringArray `json:"currencies" gorm:"type:text[]"`
	IsActive   bool           `json:"is_active"`
	SortOrder  int            `json:"sort_order"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PaymentMethodPatch carries the fields of a partial update. Nil fields are
// left untouched.
type PaymentMethodPatch struct {
	Name       *string  `json:"name"`
	NameAr     *string  `json:"name_ar"`
	Details    *string  `json:"details"`
	Currencies []string `json:"currencies"`
	IsActive   *bool    `json:"is_active"`
	SortOrder  *int     `json:"sort_order"`
}

func (p PaymentMethodPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = strings.TrimSpace(*p.Name)
	}
	if p.NameAr != nil {
		u["name_ar"] = *p.NameAr
	}
	if p.Details != nil {
		u["details"] = *p.Details
	}
	if p.Currencies != nil {
		u["currencies"] = pq.StringArray(p.Currencies)
	}
	if p.IsActive != nil {
		u["is_active"] = *p.IsActive
	}
	if p.SortOrder != nil {
		u["sort_order"] = *p.SortOrder
	}
	return u
}

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func validatePaymentMethod(m *PaymentMethod) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return apperr.NewValidationError("name", "اسم وسيلة الدفع مطلوب")
	}
	return nil
}

// List returns payment methods in display order. activeOnly hides disabled ones.
func (r *PaymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]PaymentMethod, error) {
	q := r.db.WithContext(ctx).Order("sort_order asc").Order("id asc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	methods := []PaymentMethod{}
	if err := q.Find(&methods).Error; err != nil {
		return nil, apperr.NewRemoteError("list payment methods", err)
	}
	return methods, nil
}

func (r *PaymentMethodRepository) Get(ctx context.Context, id uint) (*PaymentMethod, error) {
	var m PaymentMethod
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewRemoteError("get payment method", err)
	}
	return &m, nil
}

func (r *PaymentMethodRepository) GetByName(ctx context.Context, name string) (*PaymentMethod, error) {
	var m PaymentMethod
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewRemoteError("get payment method", err)
	}
	return &m, nil
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *PaymentMethod) error {
	if err := validatePaymentMethod(m); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.NewRemoteError("create payment method", err)
	}
	return nil
}

// Update applies patch to the method with the given id and returns the
// stored row.
func (r *PaymentMethodRepository) Update(ctx context.Context, id uint, patch PaymentMethodPatch) (*PaymentMethod, error) {
	updates := patch.updates()
	if name, ok := updates["name"]; ok && name == "" {
		return nil, apperr.NewValidationError("name", "اسم وسيلة الدفع مطلوب")
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&PaymentMethod{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, apperr.NewRemoteError("update payment method", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperr.ErrNotFound
		}
	}
	return r.Get(ctx, id)
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&PaymentMethod{}, id)
	if result.Error != nil {
		return apperr.NewRemoteError("delete payment method", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Upsert inserts m or, when a method with the same name exists, overwrites it.
func (r *PaymentMethodRepository) Upsert(ctx context.Context, m *PaymentMethod) (*PaymentMethod, error) {
	if err := validatePaymentMethod(m); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"name_ar", "details", "currencies", "is_active", "sort_order", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return nil, apperr.NewRemoteError("upsert payment method", err)
	}
	return r.GetByName(ctx, m.Name)
}
