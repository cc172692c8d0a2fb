package timeoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

func TestRangeQuery(t *testing.T) {
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	query, args, err := rangeQuery(domain.NewDateRange(from, from.AddDate(0, 0, 6))).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, technician_id, start_date, end_date, hours, reason FROM time_off WHERE start_date <= $1 AND end_date >= $2 ORDER BY technician_id ASC, start_date ASC",
		query)
	assert.Equal(t, []interface{}{from.AddDate(0, 0, 6), from}, args)
}
