package seeder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayStub(t *testing.T) {
	stub := PayStub(decimal.NewFromInt(60000), "2025-01-28")

	assert.Equal(t, "2025-01-28", stub.PayDate)
	assert.Equal(t, "5000", stub.Earnings.String())
	assert.Equal(t, "600", stub.FedTax.String())
	assert.Equal(t, "72.5", stub.FedMed.String())
	assert.Equal(t, "310", stub.FedSS.String())
	assert.Equal(t, "250", stub.StateTax.String())
	assert.Equal(t, "200", stub.Retire401k.String())
	assert.Equal(t, "150", stub.HealthCare.String())
	assert.Equal(t, "1582.5", stub.Deductions().String())
}

func TestPayStubRoundsToCents(t *testing.T) {
	stub := PayStub(decimal.NewFromInt(50000), "2025-01-28")
	assert.Equal(t, "4166.67", stub.Earnings.String())
	assert.Equal(t, "500", stub.FedTax.String())
}

func TestRandomEmployeeIsReproducibleAndValid(t *testing.T) {
	a := NewDataSeeder(nil, nil).WithSeed(7)
	b := NewDataSeeder(nil, nil).WithSeed(7)

	for i := 0; i < 20; i++ {
		ea, eb := a.randomEmployee(), b.randomEmployee()
		assert.Equal(t, ea, eb)
		require.NoError(t, ea.Validate())
		assert.LessOrEqual(t, ea.JobTitleID, len(JobTitles))
		assert.LessOrEqual(t, ea.DivisionID, len(Divisions))
	}
}

func TestPayDate(t *testing.T) {
	ds := NewDataSeeder(nil, nil).WithClock(func() time.Time {
		return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	})
	assert.Equal(t, "2025-03-28", ds.payDate(0))
	assert.Equal(t, "2025-02-28", ds.payDate(1))
	assert.Equal(t, "2024-12-28", ds.payDate(3))
}

func TestGetPresetConfig(t *testing.T) {
	tests := []struct {
		preset         SeedPreset
		employees, mon int
	}{
		{PresetSmall, 10, 3},
		{PresetMedium, 50, 12},
		{PresetLarge, 200, 12},
		{PresetXLarge, 1000, 24},
		{"unknown", 50, 12},
	}
	for _, tt := range tests {
		e, m := GetPresetConfig(tt.preset)
		assert.Equal(t, tt.employees, e, tt.preset)
		assert.Equal(t, tt.mon, m, tt.preset)
	}
}
