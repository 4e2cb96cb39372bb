package mysql

import (
	"context"
	"strings"

	"commerce-core/internal/domain"
	"commerce-core/internal/repository"

	"gorm.io/gorm"
)

type zoneRepo struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) repository.ZoneRepository {
	return &zoneRepo{db: db}
}

// FindByCountry scans active zones for one whose country set contains the
// destination. The zone table is small reference data, so a full read with an
// in-process match beats SQL string games against the CSV column.
func (r *zoneRepo) FindByCountry(ctx context.Context, countryCode string) (*domain.ShippingZone, error) {
	var zones []domain.ShippingZone
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&zones).Error; err != nil {
		return nil, err
	}
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	for i := range zones {
		if zones[i].Covers(cc) {
			return &zones[i], nil
		}
	}
	return nil, nil
}
