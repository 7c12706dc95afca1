package mapping

import (
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/models"
)

// ToModelSchedule converts a domain RecognitionSchedule to its table row.
func ToModelSchedule(d domain.RecognitionSchedule) models.RecognitionSchedule {
	return models.RecognitionSchedule{
		ScheduleID:   d.ScheduleID,
		TenantID:     d.TenantID,
		CompanyID:    d.CompanyID,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Amount:       d.Amount,
		Method:       string(d.Method),
		CurrencyCode: d.CurrencyCode,
		Description:  d.Description,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSchedule converts a model RecognitionSchedule to domain.
func ToDomainSchedule(m models.RecognitionSchedule) domain.RecognitionSchedule {
	return domain.RecognitionSchedule{
		ScheduleID:   m.ScheduleID,
		TenantID:     m.TenantID,
		CompanyID:    m.CompanyID,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Amount:       m.Amount,
		Method:       domain.RecognitionMethod(m.Method),
		CurrencyCode: m.CurrencyCode,
		Description:  m.Description,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainScheduleSlice converts model schedules to domain schedules.
func ToDomainScheduleSlice(ms []models.RecognitionSchedule) []domain.RecognitionSchedule {
	ds := make([]domain.RecognitionSchedule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSchedule(m)
	}
	return ds
}
